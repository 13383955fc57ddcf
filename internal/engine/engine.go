// Package engine implements the per-turn orchestration state machine:
// ingest files, manage session history, call the model backend and
// dispatch requested capabilities.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/regisleandro/alfredo-ai/internal/adapter/llm"
	"github.com/regisleandro/alfredo-ai/internal/budget"
	"github.com/regisleandro/alfredo-ai/internal/domain"
	"github.com/regisleandro/alfredo-ai/internal/ingest"
	"github.com/regisleandro/alfredo-ai/internal/registry"
	"github.com/regisleandro/alfredo-ai/internal/session"
	"github.com/regisleandro/alfredo-ai/policy"
)

// apologyMessage is the fixed user-facing reply for any turn that
// fails unexpectedly. The user always receives a response, never a
// raw failure.
const apologyMessage = "Perdão, mas não consegui responder a sua pergunta"

// historyResetWarning is prepended to the next text reply after the
// turn cap forced a hard reset of the conversation.
const historyResetWarning = "Atenção: a conversa ficou muito longa e o histórico anterior foi descartado."

// summaryLimit bounds the tool-result summary recorded in history.
const summaryLimit = 200

// Transcript receives a best-effort append-only record of every turn.
// Implementations must never be read back into live sessions.
type Transcript interface {
	RecordTurn(ctx context.Context, userID string, turn domain.Turn) error
}

// Engine processes one user turn end to end.
type Engine struct {
	sessions     *session.Store
	registry     *registry.Registry
	model        llm.ModelClient
	counter      budget.Counter
	policyEngine *policy.Engine
	transcript   Transcript
	tokenCeiling int
}

// New creates an Engine. policyEngine and transcript may be nil; the
// corresponding steps are skipped.
func New(sessions *session.Store, reg *registry.Registry, model llm.ModelClient, counter budget.Counter, policyEngine *policy.Engine, transcript Transcript, tokenCeiling int) *Engine {
	return &Engine{
		sessions:     sessions,
		registry:     reg,
		model:        model,
		counter:      counter,
		policyEngine: policyEngine,
		transcript:   transcript,
		tokenCeiling: tokenCeiling,
	}
}

// ProcessTurn runs one turn for userID. It never returns an error: any
// unexpected failure becomes the apology message, and the session
// keeps whatever state it reached before the failure.
func (e *Engine) ProcessTurn(ctx context.Context, userID, query string, files []domain.FilePayload) (result domain.Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("turn for %s panicked: %v", userID, r)
			result = domain.TextResult(apologyMessage)
		}
	}()

	warned := e.sessions.ResetIfFull(userID)

	var images []domain.ImagePayload
	if normalized := ingest.Normalize(files); normalized != nil {
		if normalized.HasImages() {
			images = normalized.Images
		} else {
			query = query + "\n\n" + normalized.Text
		}
	}

	e.appendTurn(ctx, userID, domain.Turn{
		TurnID:    uuid.NewString(),
		Role:      domain.RoleUser,
		Content:   query,
		CreatedAt: time.Now(),
	})

	var reply *llm.Reply
	if len(images) > 0 {
		// Vision requests carry only the current turn, never history.
		content, err := e.model.CompleteVision(ctx, query, images)
		if err != nil {
			log.Printf("vision call for %s failed: %v", userID, err)
			return domain.TextResult(apologyMessage)
		}
		reply = &llm.Reply{Content: content}
	} else {
		turns := budget.Fit(e.sessions.Turns(userID), e.tokenCeiling, e.counter)
		var err error
		reply, err = e.model.Complete(ctx, turns, e.registry.Schemas())
		if err != nil {
			log.Printf("model call for %s failed: %v", userID, err)
			return domain.TextResult(apologyMessage)
		}
	}

	if reply.Invocation != nil {
		return e.dispatch(ctx, userID, reply.Invocation, warned)
	}

	e.appendTurn(ctx, userID, domain.Turn{
		TurnID:    uuid.NewString(),
		Role:      domain.RoleAssistant,
		Content:   reply.Content,
		CreatedAt: time.Now(),
	})

	return e.withWarning(domain.TextResult(reply.Content), warned)
}

// dispatch resolves and invokes the requested capability, records a
// summarized assistant turn and returns the raw capability result
// unmodified.
func (e *Engine) dispatch(ctx context.Context, userID string, invocation *domain.ToolInvocation, warned bool) domain.Result {
	if blocked, reason := e.blockedByPolicy(ctx, userID, invocation); blocked {
		message := fmt.Sprintf("A operação %s foi bloqueada pela política de uso", invocation.Name)
		if reason != "" {
			message = fmt.Sprintf("%s: %s", message, reason)
		}
		e.recordDispatch(ctx, userID, invocation, message)
		return e.withWarning(domain.TextResult(message), warned)
	}

	result, err := e.registry.Dispatch(ctx, invocation.Name, invocation.Arguments, userID)
	if err != nil {
		if errors.Is(err, registry.ErrUnknownCapability) {
			// Schema/registry mismatch: a programming defect, fatal
			// for this turn.
			log.Printf("defect: model requested unregistered capability %q", invocation.Name)
		} else {
			log.Printf("capability %s failed for %s: %v", invocation.Name, userID, err)
		}
		return domain.TextResult(apologyMessage)
	}

	e.recordDispatch(ctx, userID, invocation, summarizeResult(invocation.Name, result))
	return e.withWarning(result, warned)
}

func (e *Engine) blockedByPolicy(ctx context.Context, userID string, invocation *domain.ToolInvocation) (bool, string) {
	if e.policyEngine == nil {
		return false, ""
	}

	args := map[string]any{}
	if len(invocation.Arguments) > 0 {
		json.Unmarshal(invocation.Arguments, &args)
	}
	decision, err := e.policyEngine.Evaluate(ctx, map[string]any{
		"tool_name": invocation.Name,
		"user_id":   userID,
		"args":      args,
	})
	if err != nil {
		log.Printf("policy evaluation for %s failed: %v", invocation.Name, err)
		return false, ""
	}
	if decision == "block" {
		return true, ""
	}
	return false, ""
}

// recordDispatch appends the assistant turn that keeps structured
// memory of a tool call in the session.
func (e *Engine) recordDispatch(ctx context.Context, userID string, invocation *domain.ToolInvocation, summary string) {
	e.appendTurn(ctx, userID, domain.Turn{
		TurnID:     uuid.NewString(),
		Role:       domain.RoleAssistant,
		Content:    summary,
		Invocation: invocation,
		ToolName:   invocation.Name,
		CreatedAt:  time.Now(),
	})
}

// withWarning prepends the pending reset warning to text results.
// Structured results are returned unmodified and the warning is
// dropped — a reproduced quirk of the original flow, see DESIGN.md.
func (e *Engine) withWarning(result domain.Result, warned bool) domain.Result {
	if !warned || result.Kind != domain.ResultKindText {
		return result
	}
	result.Text = historyResetWarning + "\n\n" + result.Text
	return result
}

func (e *Engine) appendTurn(ctx context.Context, userID string, turn domain.Turn) {
	e.sessions.Append(userID, turn)
	if e.transcript != nil {
		if err := e.transcript.RecordTurn(ctx, userID, turn); err != nil {
			log.Printf("failed to record turn for %s: %v", userID, err)
		}
	}
}

func summarizeResult(name string, result domain.Result) string {
	switch result.Kind {
	case domain.ResultKindTable:
		rows := 0
		if result.Table != nil {
			rows = len(result.Table.Rows)
		}
		return fmt.Sprintf("Ferramenta %s executada: retornou %d linhas", name, rows)
	case domain.ResultKindRecords:
		return fmt.Sprintf("Ferramenta %s executada: retornou %d registros", name, len(result.Records))
	default:
		text := result.Text
		if len([]rune(text)) > summaryLimit {
			text = string([]rune(text)[:summaryLimit]) + "…"
		}
		return fmt.Sprintf("Ferramenta %s executada: %s", name, text)
	}
}
