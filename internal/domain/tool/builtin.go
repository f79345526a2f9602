package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/matiasleandrokruk/sqlpilot/internal/domain/query"
	"github.com/matiasleandrokruk/sqlpilot/internal/domain/schema"
)

// Builtin tool names.
const (
	NameQueryExecutor  = "query_executor"
	NameListDatabases  = "list_databases"
	NameDescribeSchema = "describe_schema"
)

// QueryInput is the call payload for the query_executor tool.
type QueryInput struct {
	Query string `json:"query"`
}

// DescribeSchemaInput is the call payload for the describe_schema tool.
type DescribeSchemaInput struct {
	Database string `json:"database,omitempty"`
}

// QueryExecutorTool runs free-text SQL and returns the response envelope.
type QueryExecutorTool struct {
	executor *query.Executor
}

func NewQueryExecutorTool(executor *query.Executor) *QueryExecutorTool {
	return &QueryExecutorTool{executor: executor}
}

func (t *QueryExecutorTool) Execute(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	var input QueryInput
	if err := json.Unmarshal(params, &input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	env := t.executor.Execute(ctx, input.Query)
	return json.Marshal(env)
}

// ListDatabasesTool returns the database names visible on the server.
type ListDatabasesTool struct {
	inspector *schema.Inspector
}

func NewListDatabasesTool(inspector *schema.Inspector) *ListDatabasesTool {
	return &ListDatabasesTool{inspector: inspector}
}

func (t *ListDatabasesTool) Execute(ctx context.Context, _ json.RawMessage) (json.RawMessage, error) {
	names, err := t.inspector.ListDatabases(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{"databases": names})
}

// DescribeSchemaTool renders the schema report for a database.
type DescribeSchemaTool struct {
	inspector       *schema.Inspector
	defaultDatabase string
}

func NewDescribeSchemaTool(inspector *schema.Inspector, defaultDatabase string) *DescribeSchemaTool {
	return &DescribeSchemaTool{inspector: inspector, defaultDatabase: defaultDatabase}
}

func (t *DescribeSchemaTool) Execute(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	var input DescribeSchemaInput
	if len(params) > 0 {
		if err := json.Unmarshal(params, &input); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}
	}
	database := input.Database
	if database == "" {
		database = t.defaultDatabase
	}

	tables, err := t.inspector.Tables(ctx, database)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{
		"database": database,
		"report":   schema.Report(database, tables),
	})
}

// RegisterBuiltins registers the three builtin tools on the registry.
func RegisterBuiltins(reg *Registry, executor *query.Executor, inspector *schema.Inspector, defaultDatabase string) error {
	builtins := []struct {
		def  Definition
		exec Executor
	}{
		{
			def: Definition{
				Name:        NameQueryExecutor,
				Description: "Execute a SQL query against the connected database and return rows, a success message, or an error.",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {
						"query": {"type": "string", "description": "The SQL statement to execute."}
					},
					"required": ["query"],
					"additionalProperties": false
				}`),
			},
			exec: NewQueryExecutorTool(executor),
		},
		{
			def: Definition{
				Name:        NameListDatabases,
				Description: "List the database names visible on the connected server.",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {},
					"additionalProperties": false
				}`),
			},
			exec: NewListDatabasesTool(inspector),
		},
		{
			def: Definition{
				Name:        NameDescribeSchema,
				Description: "Describe the tables, columns and relationships of a database as a text report.",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {
						"database": {"type": "string", "description": "Database name; defaults to the connected database."}
					},
					"additionalProperties": false
				}`),
			},
			exec: NewDescribeSchemaTool(inspector, defaultDatabase),
		},
	}

	for _, b := range builtins {
		if err := reg.Register(b.def, b.exec); err != nil {
			return err
		}
	}
	return nil
}
