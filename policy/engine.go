// Package policy gates capability dispatch through an OPA rego policy.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"
)

// Engine evaluates the tool dispatch policy.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine prepares the policy for evaluation.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.tool_policy.decision"),
		rego.Module("tool_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate returns the policy decision for one dispatch. Input carries
// tool_name, args and user_id. Decisions are "allow" or "block"; an
// empty evaluation result defaults to allow.
func (e *Engine) Evaluate(ctx context.Context, input any) (string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return "allow", nil
	}
	if decision, ok := results[0].Expressions[0].Value.(string); ok {
		return decision, nil
	}
	return "allow", nil
}

// DefaultPolicy allows every capability except oversized queue resends,
// the only side-effecting tool in the registry.
const DefaultPolicy = `
package tool_policy

default decision := "allow"

decision := "block" if {
	input.tool_name == "resend_to_queue"
	input.args.limit > 500
}
`
