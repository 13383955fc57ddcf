// Package capability wires the tool schemas to their backend clients.
// Every capability declared here is what the model backend can call.
package capability

import (
	"context"
	"fmt"
	"strconv"

	"github.com/regisleandro/alfredo-ai/internal/adapter/pulpo"
	"github.com/regisleandro/alfredo-ai/internal/adapter/rabbit"
	"github.com/regisleandro/alfredo-ai/internal/adapter/trello"
	"github.com/regisleandro/alfredo-ai/internal/domain"
	"github.com/regisleandro/alfredo-ai/internal/registry"
)

// QueueBroker is the queue admin surface used by the queue
// capabilities.
type QueueBroker interface {
	QueueStatus(ctx context.Context, vhost, queueName string, withoutMessages bool) ([]rabbit.QueueRow, error)
	GetMessages(ctx context.Context, vhost, queueName string, limit int) ([]rabbit.Message, error)
	SummarizeMessages(ctx context.Context, vhost, queueName string, limit int) ([]rabbit.Summary, error)
	Resend(ctx context.Context, vhost, queueName string, limit int) (int, error)
}

// SyncInspector is the database error-report surface.
type SyncInspector interface {
	SummarizeCollectionsWithError(ctx context.Context, database string) (*domain.Table, error)
	SummarizePicturesByStatus(ctx context.Context, database, status string) (*domain.Table, error)
}

// RepoSearcher is the pull-request search surface.
type RepoSearcher interface {
	SearchPullRequests(ctx context.Context, repoName, status, label string) ([]map[string]any, error)
}

// KnowledgeBase is the document search surface.
type KnowledgeBase interface {
	SearchDocuments(ctx context.Context, searchTerm string) (*pulpo.SearchResult, error)
}

// TaskBoard is the task lookup surface used by the analyst
// capabilities.
type TaskBoard interface {
	FindTask(ctx context.Context, taskID int, boardName string) (*trello.Card, error)
}

// Prompter runs a standalone model prompt for capabilities that do
// their own completion.
type Prompter interface {
	CompletePrompt(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Backends holds every client the capabilities dispatch to. A nil
// backend leaves its capabilities unregistered.
type Backends struct {
	Queues    QueueBroker
	Sync      SyncInspector
	Repos     RepoSearcher
	Knowledge KnowledgeBase
	Tasks     TaskBoard
	Model     Prompter
}

const analystMaxTokens = 500

// NewRegistry builds the capability registry from the configured
// backends.
func NewRegistry(b Backends) (*registry.Registry, error) {
	reg := registry.New()

	register := func(schema domain.ToolSchema, call registry.Capability) error {
		return reg.Register(schema, call)
	}

	if b.Queues != nil {
		if err := register(getQueueMessagesSchema(), getQueueMessages(b.Queues)); err != nil {
			return nil, err
		}
		if err := register(getQueueStatusSchema(), getQueueStatus(b.Queues)); err != nil {
			return nil, err
		}
		if err := register(summarizeQueueMessagesSchema(), summarizeQueueMessages(b.Queues)); err != nil {
			return nil, err
		}
		if err := register(resendToQueueSchema(), resendToQueue(b.Queues)); err != nil {
			return nil, err
		}
	}

	if b.Sync != nil {
		if err := register(summarizeCollectionsWithErrorSchema(), summarizeCollectionsWithError(b.Sync)); err != nil {
			return nil, err
		}
		if err := register(summarizePicturesByStatusSchema(), summarizePicturesByStatus(b.Sync)); err != nil {
			return nil, err
		}
	}

	if b.Repos != nil {
		if err := register(searchPullRequestsSchema(), searchPullRequests(b.Repos)); err != nil {
			return nil, err
		}
	}

	if b.Knowledge != nil {
		if err := register(searchDocumentsSchema(), searchDocuments(b.Knowledge)); err != nil {
			return nil, err
		}
	}

	if b.Tasks != nil && b.Model != nil {
		if err := register(taskAnalystSchema(), taskAnalyst(b.Tasks, b.Model)); err != nil {
			return nil, err
		}
	}
	if b.Model != nil {
		if err := register(taskManagerAnalystSchema(), taskManagerAnalyst(b.Model)); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

func getQueueMessages(queues QueueBroker) registry.Capability {
	return func(ctx context.Context, args map[string]any) (domain.Result, error) {
		vhost := registry.StringArg(args, "vhost", "")
		queueName := registry.StringArg(args, "queue_name", "")
		limit := registry.IntArg(args, "limit", 10)
		gpaCode := registry.IntArg(args, "gpa_code", 0)
		collection := registry.StringArg(args, "collection", "")

		messages, err := queues.GetMessages(ctx, vhost, queueName, limit)
		if err != nil {
			return domain.Result{}, err
		}

		records := make([]map[string]any, 0, len(messages))
		for _, message := range messages {
			if !matchesFilter(message, gpaCode, collection) {
				continue
			}
			if message.Body != nil {
				records = append(records, message.Body)
				continue
			}
			records = append(records, map[string]any{"payload": message.Raw})
		}
		return domain.RecordsResult(records), nil
	}
}

// matchesFilter applies the optional gpa_code / collection filters
// against a message's config section.
func matchesFilter(message rabbit.Message, gpaCode int, collection string) bool {
	if gpaCode == 0 && collection == "" {
		return true
	}
	config, _ := message.Body["config"].(map[string]any)
	if config == nil {
		return false
	}
	if gpaCode != 0 {
		code, ok := config["gpa_code"].(float64)
		if !ok || int(code) != gpaCode {
			return false
		}
	}
	if collection != "" {
		if model, _ := config["model"].(string); model != collection {
			return false
		}
	}
	return true
}

func getQueueStatus(queues QueueBroker) registry.Capability {
	return func(ctx context.Context, args map[string]any) (domain.Result, error) {
		vhost := registry.StringArg(args, "vhost", "")
		queueName := registry.StringArg(args, "queue_name", "")
		withoutMessages := registry.BoolArg(args, "without_messages", false)

		rows, err := queues.QueueStatus(ctx, vhost, queueName, withoutMessages)
		if err != nil {
			return domain.Result{}, err
		}

		table := &domain.Table{Columns: []string{"queue", "messages"}}
		for _, row := range rows {
			table.Rows = append(table.Rows, []string{row.Name, strconv.Itoa(row.Messages)})
		}
		return domain.TableResult(table), nil
	}
}

func summarizeQueueMessages(queues QueueBroker) registry.Capability {
	return func(ctx context.Context, args map[string]any) (domain.Result, error) {
		vhost := registry.StringArg(args, "vhost", "")
		queueName := registry.StringArg(args, "queue_name", "")
		limit := registry.IntArg(args, "limit", 50)

		summaries, err := queues.SummarizeMessages(ctx, vhost, queueName, limit)
		if err != nil {
			return domain.Result{}, err
		}

		table := &domain.Table{Columns: []string{"gpa_code", "tenant", "model", "origin", "qtde"}}
		for _, summary := range summaries {
			table.Rows = append(table.Rows, []string{
				summary.GpaCode, summary.Tenant, summary.Model, summary.Origin, strconv.Itoa(summary.Count),
			})
		}
		return domain.TableResult(table), nil
	}
}

func resendToQueue(queues QueueBroker) registry.Capability {
	return func(ctx context.Context, args map[string]any) (domain.Result, error) {
		vhost := registry.StringArg(args, "vhost", "")
		queueName := registry.StringArg(args, "queue_name", "")
		limit := registry.IntArg(args, "limit", 50)

		count, err := queues.Resend(ctx, vhost, queueName, limit)
		if err != nil {
			return domain.Result{}, err
		}
		return domain.TextResult(fmt.Sprintf("Foram reenviadas %d mensagens para a fila %s.", count, queueName)), nil
	}
}

func summarizeCollectionsWithError(sync SyncInspector) registry.Capability {
	return func(ctx context.Context, args map[string]any) (domain.Result, error) {
		database := registry.StringArg(args, "vhost", "")
		table, err := sync.SummarizeCollectionsWithError(ctx, database)
		if err != nil {
			return domain.Result{}, err
		}
		return domain.TableResult(table), nil
	}
}

func summarizePicturesByStatus(sync SyncInspector) registry.Capability {
	return func(ctx context.Context, args map[string]any) (domain.Result, error) {
		database := registry.StringArg(args, "vhost", "")
		status := registry.StringArg(args, "status", "pending")
		table, err := sync.SummarizePicturesByStatus(ctx, database, status)
		if err != nil {
			return domain.Result{}, err
		}
		return domain.TableResult(table), nil
	}
}

func searchPullRequests(repos RepoSearcher) registry.Capability {
	return func(ctx context.Context, args map[string]any) (domain.Result, error) {
		repoName := registry.StringArg(args, "repo_name", "")
		status := registry.StringArg(args, "status", "closed")
		label := registry.StringArg(args, "label", "")

		records, err := repos.SearchPullRequests(ctx, repoName, status, label)
		if err != nil {
			return domain.Result{}, err
		}
		return domain.RecordsResult(records), nil
	}
}

func searchDocuments(knowledge KnowledgeBase) registry.Capability {
	return func(ctx context.Context, args map[string]any) (domain.Result, error) {
		searchTerm := registry.StringArg(args, "search_term", "")

		result, err := knowledge.SearchDocuments(ctx, searchTerm)
		if err != nil {
			return domain.Result{}, err
		}
		return domain.TextResult(result.Markdown()), nil
	}
}

func taskAnalyst(tasks TaskBoard, model Prompter) registry.Capability {
	return func(ctx context.Context, args map[string]any) (domain.Result, error) {
		taskID := registry.IntArg(args, "task_id", 0)
		query := registry.StringArg(args, "query", "")
		boardName := registry.StringArg(args, "board_name", "inovacao")

		card, err := tasks.FindTask(ctx, taskID, boardName)
		if err != nil {
			return domain.Result{}, err
		}

		answer, err := model.CompletePrompt(ctx, taskAnalystPrompt(card, query), analystMaxTokens)
		if err != nil {
			return domain.Result{}, err
		}
		return domain.TextResult(answer), nil
	}
}

func taskManagerAnalyst(model Prompter) registry.Capability {
	return func(ctx context.Context, args map[string]any) (domain.Result, error) {
		description := registry.StringArg(args, "task_description", "describe a task to create a new user in the system")

		answer, err := model.CompletePrompt(ctx, taskManagerAnalystPrompt(description), analystMaxTokens)
		if err != nil {
			return domain.Result{}, err
		}
		return domain.TextResult(answer), nil
	}
}
