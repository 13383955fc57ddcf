package capability

import "github.com/regisleandro/alfredo-ai/internal/domain"

// The schemas below are what the model backend sees. Descriptions and
// defaults steer which capability the model picks, so they stay close
// to natural language. The vhost parameter is the caller's identity
// scope; it is injected at dispatch and never declared to the model.

func getQueueMessagesSchema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        "get_queue_messages",
		Description: "Get messages from a queue",
		Parameters: &domain.Parameters{
			Type: "object",
			Properties: map[string]domain.Property{
				"queue_name": {
					Type:        "string",
					Description: `The name of the queue to get messages from, e.g. "sync_mongo_to_postgres"`,
				},
				"gpa_code": {
					Type:        "integer",
					Description: "GPA or client code to filter the messages",
				},
				"collection": {
					Type:        "string",
					Description: "the collection or model to filter the messages",
				},
				"limit": {
					Type:        "integer",
					Description: "The number of messages to get from the queue, if not provided will get all messages",
				},
			},
		},
		UserParam: "vhost",
	}
}

func getQueueStatusSchema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        "get_queue_status",
		Description: "Get the status of a queue",
		Parameters: &domain.Parameters{
			Type: "object",
			Properties: map[string]domain.Property{
				"queue_name": {
					Type:        "string",
					Description: `The name of the queue to get the status of, e.g. "sync_mongo_to_postgres"`,
				},
				"without_messages": {
					Type:        "boolean",
					Description: "Whether to include messages with count > 0 in the response",
					Default:     false,
				},
			},
		},
		UserParam: "vhost",
	}
}

func summarizeQueueMessagesSchema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        "summarize_queue_messages",
		Description: "Summarize or get statistics from messages in a queue",
		Parameters: &domain.Parameters{
			Type: "object",
			Properties: map[string]domain.Property{
				"queue_name": {
					Type:        "string",
					Description: `The name of the queue to summarize the messages from, e.g. "sync_mongo_to_postgres"`,
				},
				"limit": {
					Type:        "integer",
					Description: "The maximum number of messages to return",
					Default:     50,
				},
			},
		},
		UserParam: "vhost",
	}
}

func resendToQueueSchema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        "resend_to_queue",
		Description: "Resend or reprocess the messages from a queue",
		Parameters: &domain.Parameters{
			Type: "object",
			Properties: map[string]domain.Property{
				"queue_name": {
					Type:        "string",
					Description: `The name of the queue to resend the messages to, e.g. "sync_mongo_to_postgres"`,
				},
				"limit": {
					Type:        "integer",
					Description: "The maximum number of messages to resend",
					Default:     50,
				},
			},
		},
		UserParam: "vhost",
	}
}

func summarizeCollectionsWithErrorSchema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        "summarize_collections_with_error",
		Description: "Summarize or get the status of the synchronization errors in Mongo",
		UserParam:   "vhost",
	}
}

func summarizePicturesByStatusSchema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        "summarize_pictures_by_status",
		Description: "Summarize or get status for pictures in Mongo by status",
		Parameters: &domain.Parameters{
			Type: "object",
			Properties: map[string]domain.Property{
				"status": {
					Type:        "string",
					Description: `The status to filter need to be "pending", "done" or "error"`,
					Default:     "pending",
				},
			},
		},
		UserParam: "vhost",
	}
}

func searchPullRequestsSchema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        "search_pull_requests",
		Description: "List the commits from pull requests in a repository",
		Parameters: &domain.Parameters{
			Type: "object",
			Properties: map[string]domain.Property{
				"status": {
					Type:        "string",
					Description: `The status to filter need to be "closed", "all" or "open"`,
					Default:     "closed",
				},
				"repo_name": {
					Type:        "string",
					Description: `The name of the repository to search for pull requests, e.g. "alfredo-ai"`,
					Default:     "",
				},
				"label": {
					Type:        "string",
					Description: `The label to filter the pull requests, e.g. "bug" or "enhancement"`,
					Default:     "",
				},
			},
		},
	}
}

func searchDocumentsSchema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        "search_documents",
		Description: "Search in the Pulpo knowledge base for documents that match the provided search term.",
		Parameters: &domain.Parameters{
			Type: "object",
			Properties: map[string]domain.Property{
				"search_term": {
					Type:        "string",
					Description: "The term or phrase to search for in the Pulpo knowledge base, e.g., 'how to create a new user in Pulpo'.",
				},
			},
			Required: []string{"search_term"},
		},
	}
}

func taskAnalystSchema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        "task_analyst",
		Description: "Extracts the task ID, board name, and user`s query about the task from a given text.",
		Parameters: &domain.Parameters{
			Type: "object",
			Properties: map[string]domain.Property{
				"query": {
					Type:        "string",
					Description: `The user's question about the task, excluding task ID and board name. Example: "quais os comentários da tarefa?" instead of "quais os comentários da tarefa 2256 do time inovacao?".`,
				},
				"board_name": {
					Type:        "string",
					Description: "The development team or board name to get the task information, e.g. 'inovacao'",
					Default:     "inovacao",
				},
				"task_id": {
					Type:        "integer",
					Description: `The numeric ID of the task, extracted from the input text. Example: 2256 if the question is "quais os comentários da tarefa 2256 do time inovacao?".`,
				},
			},
			Required: []string{"task_id", "query"},
		},
	}
}

func taskManagerAnalystSchema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        "task_manager_analyst",
		Description: "Create tasks for developers, analysing the request and creating a task in BDD format",
		Parameters: &domain.Parameters{
			Type: "object",
			Properties: map[string]domain.Property{
				"task_description": {
					Type:        "string",
					Description: `The description of the task to be created, e.g. "describe a task to create a new user in the system"`,
					Default:     "describe a task to create a new user in the system",
				},
			},
		},
	}
}
