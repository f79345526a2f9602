// Package mcp exposes the SQL tools over the Model Context Protocol so any
// MCP-capable client (Claude Desktop, editors, other agents) can query the
// connected database. The server speaks MCP over stdio.
package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/matiasleandrokruk/sqlpilot/internal/domain/query"
	"github.com/matiasleandrokruk/sqlpilot/internal/domain/schema"
)

// Config wires the MCP server to the domain services.
type Config struct {
	Logger    *slog.Logger
	Executor  *query.Executor
	Inspector *schema.Inspector
	// Database is the default database for schema tools.
	Database string
	Version  string
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if c.Executor == nil {
		return fmt.Errorf("query executor is required")
	}
	if c.Inspector == nil {
		return fmt.Errorf("schema inspector is required")
	}
	if c.Version == "" {
		c.Version = "dev"
	}
	return nil
}

// Server hosts the MCP tool surface.
type Server struct {
	log *slog.Logger
	cfg Config
	mcp *mcp.Server
}

// QueryInput is the call payload for the query tool.
type QueryInput struct {
	Query string `json:"query"`
}

// DatabasesOutput is the result of the list_databases tool.
type DatabasesOutput struct {
	Databases []string `json:"databases"`
}

// DescribeSchemaInput is the call payload for the describe_schema tool.
type DescribeSchemaInput struct {
	Database string `json:"database,omitempty"`
}

// DescribeSchemaOutput is the result of the describe_schema tool.
type DescribeSchemaOutput struct {
	Database string `json:"database"`
	Report   string `json:"report"`
}

// New builds the MCP server and registers the tools.
func New(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "sqlpilot",
		Version: cfg.Version,
	}, nil)

	s := &Server{
		log: cfg.Logger,
		cfg: cfg,
		mcp: mcpServer,
	}

	if err := s.registerQueryTool(); err != nil {
		return nil, fmt.Errorf("register query tool: %w", err)
	}
	if err := s.registerListDatabasesTool(); err != nil {
		return nil, fmt.Errorf("register list_databases tool: %w", err)
	}
	if err := s.registerDescribeSchemaTool(); err != nil {
		return nil, fmt.Errorf("register describe_schema tool: %w", err)
	}

	return s, nil
}

// Run serves MCP over stdio until the client disconnects or ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("mcp: serving over stdio", "version", s.cfg.Version)
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerQueryTool() error {
	in, err := jsonschema.For[QueryInput](nil)
	if err != nil {
		return fmt.Errorf("query input schema: %w", err)
	}
	out, err := jsonschema.For[query.Envelope](nil)
	if err != nil {
		return fmt.Errorf("query output schema: %w", err)
	}

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "query_executor",
		Description: "Execute a SQL query against the connected database. " +
			"Returns rows for statements that produce a result set, a success " +
			"message otherwise, or the database error. Consult describe_schema " +
			"before writing SQL; do not guess column names.",
		InputSchema:  in,
		OutputSchema: out,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, req QueryInput) (*mcp.CallToolResult, query.Envelope, error) {
		s.log.Debug("mcp/tool: executing query", "query", req.Query)
		return nil, s.cfg.Executor.Execute(ctx, req.Query), nil
	})
	return nil
}

func (s *Server) registerListDatabasesTool() error {
	out, err := jsonschema.For[DatabasesOutput](nil)
	if err != nil {
		return fmt.Errorf("list_databases output schema: %w", err)
	}

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:         "list_databases",
		Description:  "List the database names visible on the connected server.",
		OutputSchema: out,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, DatabasesOutput, error) {
		names, err := s.cfg.Inspector.ListDatabases(ctx)
		if err != nil {
			return nil, DatabasesOutput{}, err
		}
		return nil, DatabasesOutput{Databases: names}, nil
	})
	return nil
}

func (s *Server) registerDescribeSchemaTool() error {
	in, err := jsonschema.For[DescribeSchemaInput](nil)
	if err != nil {
		return fmt.Errorf("describe_schema input schema: %w", err)
	}
	out, err := jsonschema.For[DescribeSchemaOutput](nil)
	if err != nil {
		return fmt.Errorf("describe_schema output schema: %w", err)
	}

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "describe_schema",
		Description: "Describe the tables, columns and relationships of a " +
			"database as a fixed-width text report.",
		InputSchema:  in,
		OutputSchema: out,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, req DescribeSchemaInput) (*mcp.CallToolResult, DescribeSchemaOutput, error) {
		database := req.Database
		if database == "" {
			database = s.cfg.Database
		}
		tables, err := s.cfg.Inspector.Tables(ctx, database)
		if err != nil {
			return nil, DescribeSchemaOutput{}, err
		}
		return nil, DescribeSchemaOutput{
			Database: database,
			Report:   schema.Report(database, tables),
		}, nil
	})
	return nil
}
