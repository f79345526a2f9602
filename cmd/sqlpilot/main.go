// sqlpilot — SQL assistant for LLM agents.
// Entry point: subcommand dispatch plus --version/--help.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/matiasleandrokruk/sqlpilot/internal/api"
	"github.com/matiasleandrokruk/sqlpilot/internal/domain/agent"
	domainaudit "github.com/matiasleandrokruk/sqlpilot/internal/domain/audit"
	domainauth "github.com/matiasleandrokruk/sqlpilot/internal/domain/auth"
	"github.com/matiasleandrokruk/sqlpilot/internal/domain/query"
	"github.com/matiasleandrokruk/sqlpilot/internal/domain/schema"
	"github.com/matiasleandrokruk/sqlpilot/internal/domain/tool"
	"github.com/matiasleandrokruk/sqlpilot/internal/infra/config"
	"github.com/matiasleandrokruk/sqlpilot/internal/infra/dbconn"
	"github.com/matiasleandrokruk/sqlpilot/internal/infra/eventbus"
	"github.com/matiasleandrokruk/sqlpilot/internal/infra/llm"
	"github.com/matiasleandrokruk/sqlpilot/internal/infra/sqlite"
	mcpserver "github.com/matiasleandrokruk/sqlpilot/internal/mcp"
	"github.com/matiasleandrokruk/sqlpilot/internal/server"
	"github.com/matiasleandrokruk/sqlpilot/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stdin))
}

func run(args []string, out io.Writer, in io.Reader) int {
	fs := flag.NewFlagSet("sqlpilot", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	showVersion := fs.Bool("version", false, "Show version information")
	showHelp := fs.Bool("help", false, "Show help")
	verbose := fs.Bool("verbose", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return 0
	}
	if *showHelp || fs.NArg() == 0 {
		printHelp(out)
		return 0
	}

	log := newLogger(*verbose)
	cfg := config.Load()

	var err error
	switch cmd := fs.Arg(0); cmd {
	case "serve":
		err = runServe(cfg, log)
	case "chat":
		err = runChat(cfg, log, out, in)
	case "mcp":
		err = runMCP(cfg, log)
	case "schema":
		err = runSchema(cfg, out)
	default:
		fmt.Fprintf(out, "unknown command: %s\n\n", cmd) //nolint:errcheck
		printHelp(out)
		return 2
	}
	if err != nil {
		log.Error("command failed", "error", err)
		return 1
	}
	return 0
}

func printHelp(out io.Writer) {
	helpText := `sqlpilot — SQL assistant for LLM agents

Usage:
  sqlpilot [options] <command>

Options:
  --version    Show version information
  --help       Show this help message
  --verbose    Enable debug logging

Commands:
  serve        Start the HTTP API server
  chat         Start an interactive assistant session in the terminal
  mcp          Serve the SQL tools over MCP (stdio)
  schema       Print the schema report for the configured database

Examples:
  sqlpilot --version
  sqlpilot serve
  SQLPILOT_DB_NAME=employees sqlpilot chat
  sqlpilot schema`
	fmt.Fprintln(out, helpText) //nolint:errcheck
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))
}

// openTarget connects to the database queries run against.
func openTarget(cfg config.Config) (*sql.DB, error) {
	dbCfg := dbconn.Config{
		Dialect:  cfg.DBDialect,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		Path:     cfg.DBName,
	}
	db, err := dbconn.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open target database (%s): %w", dbCfg.Redacted(), err)
	}
	return db, nil
}

// openStore opens the local history/audit store and applies migrations.
func openStore(cfg config.Config) (*sql.DB, error) {
	store, err := sqlite.NewDB(cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", cfg.StorePath, err)
	}
	if err := sqlite.MigrateUp(store); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return store, nil
}

// buildProvider assembles the configured LLM providers behind a router and
// returns the active one.
func buildProvider(cfg config.Config) (llm.LLMProvider, error) {
	providers := map[string]llm.LLMProvider{
		"ollama": llm.NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaChatModel),
	}
	if cfg.AnthropicAPIKey != "" {
		providers["anthropic"] = llm.NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	}

	router := llm.NewRouter(providers, cfg.LLMProvider)
	provider, err := router.Route(context.Background())
	if err != nil {
		return nil, fmt.Errorf("llm provider %q: %w", cfg.LLMProvider, err)
	}
	return provider, nil
}

// buildAgent wires the tool registry and the assistant service. The schema
// report is embedded into the system prompt so the model sees real table and
// column names.
func buildAgent(ctx context.Context, cfg config.Config, executor *query.Executor, inspector *schema.Inspector, log *slog.Logger) (*agent.Service, error) {
	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}

	profile, err := agent.LoadProfile(cfg.AgentProfilePath)
	if err != nil {
		return nil, err
	}

	registry := tool.NewRegistry()
	if err := tool.RegisterBuiltins(registry, executor, inspector, cfg.DBName); err != nil {
		return nil, fmt.Errorf("register tools: %w", err)
	}

	report := ""
	if tables, err := inspector.Tables(ctx, cfg.DBName); err != nil {
		log.Warn("schema introspection failed, assistant starts without schema context", "error", err)
	} else {
		report = schema.Report(cfg.DBName, tables)
	}

	return agent.NewService(provider, registry, profile, report, log), nil
}

func runServe(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	target, err := openTarget(cfg)
	if err != nil {
		return err
	}
	defer target.Close() //nolint:errcheck

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck

	bus := eventbus.New()
	executor := query.NewExecutorWithBus(target, cfg.QueryTimeout, bus)
	inspector := schema.NewInspector(target, cfg.DBDialect)
	auditService := domainaudit.NewService(store)

	// Persist every executed query into query_history.
	go domainaudit.NewRecorder(auditService, log).Start(ctx, bus)

	deps := api.Deps{
		Auth:      domainauth.NewService(cfg.AdminUser, cfg.AdminPasswordHash),
		Executor:  executor,
		Inspector: inspector,
		Audit:     auditService,
		Database:  cfg.DBName,
	}

	if chatSvc, err := buildAgent(ctx, cfg, executor, inspector, log); err != nil {
		log.Warn("assistant disabled", "error", err)
	} else {
		deps.Chat = chatSvc
	}

	srvCfg := server.DefaultConfig()
	srvCfg.Host = cfg.HTTPHost
	srvCfg.Port = cfg.HTTPPort
	srv := server.NewServer(deps, srvCfg, log)

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-serveErr:
		return err
	}
}

func runChat(cfg config.Config, log *slog.Logger, out io.Writer, in io.Reader) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	target, err := openTarget(cfg)
	if err != nil {
		return err
	}
	defer target.Close() //nolint:errcheck

	executor := query.NewExecutor(target, cfg.QueryTimeout)
	inspector := schema.NewInspector(target, cfg.DBDialect)

	svc, err := buildAgent(ctx, cfg, executor, inspector, log)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Chat with the assistant! Type 'q' to quit.") //nolint:errcheck
	fmt.Fprintln(out)                                               //nolint:errcheck

	var history []llm.Message
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "You: ") //nolint:errcheck
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "q") {
			fmt.Fprintln(out, "Goodbye!") //nolint:errcheck
			return nil
		}

		turn, updated, err := svc.Chat(ctx, history, line)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err) //nolint:errcheck
			continue
		}
		history = updated
		fmt.Fprintf(out, "Assistant: %s\n", turn.Answer) //nolint:errcheck
	}
	return scanner.Err()
}

func runMCP(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	target, err := openTarget(cfg)
	if err != nil {
		return err
	}
	defer target.Close() //nolint:errcheck

	srv, err := mcpserver.New(mcpserver.Config{
		Logger:    log,
		Executor:  query.NewExecutor(target, cfg.QueryTimeout),
		Inspector: schema.NewInspector(target, cfg.DBDialect),
		Database:  cfg.DBName,
		Version:   version.Version,
	})
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

func runSchema(cfg config.Config, out io.Writer) error {
	ctx := context.Background()

	target, err := openTarget(cfg)
	if err != nil {
		return err
	}
	defer target.Close() //nolint:errcheck

	inspector := schema.NewInspector(target, cfg.DBDialect)
	tables, err := inspector.Tables(ctx, cfg.DBName)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, schema.Report(cfg.DBName, tables)) //nolint:errcheck
	return nil
}
