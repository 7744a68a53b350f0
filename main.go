package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"nlsql/internal/chatbot"
	"nlsql/internal/config"
	"nlsql/internal/db"
	"nlsql/internal/llm"
	"nlsql/internal/observability"
	"nlsql/internal/server"
)

const questionPrompt = "Tell OpenAi what you want to know about the data: "

const (
	exitOK = iota
	exitFailure
	exitConfig
	exitLoad
	exitRemote
	exitQuery
)

type options struct {
	configPath string
	envPath    string
	question   string
	serve      bool
}

func main() {
	flags := pflag.NewFlagSet("nlsql", pflag.ExitOnError)
	var opts options
	flags.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	flags.StringVar(&opts.envPath, "env", ".env", "path to a .env file")
	flags.StringVarP(&opts.question, "question", "q", "", "question to ask; read from stdin when empty")
	flags.BoolVar(&opts.serve, "serve", false, "serve the HTTP API instead of answering one question")
	flags.String("data", "", "data file to load (csv, tsv or xlsx, optionally .gz, .bz2, .xz or .zst)")
	flags.String("table", "", "table name the data is loaded into")
	flags.String("engine", "", "sql engine: "+strings.Join(db.Drivers(), ", "))
	flags.String("provider", "", "completion provider: openai or gemini")
	flags.String("model", "", "completion model")
	flags.String("addr", "", "listen address in serve mode")
	flags.Bool("log-json", false, "log as JSON")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	_ = flags.Parse(os.Args[1:])

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, opts, flags)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, opts options, flags *pflag.FlagSet) int {
	// Load configuration
	cfg, err := config.LoadConfig(opts.configPath, opts.envPath, flags)
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		return exitConfig
	}
	logger := observability.NewLogger(cfg.Log, os.Stderr)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", slog.Any("error", err))
		return exitConfig
	}

	// Load the data file into a fresh engine
	hdb, schema, err := chatbot.LoadSource(ctx, cfg.Engine.Driver, cfg.Data.Path, cfg.Data.Table)
	if err != nil {
		logger.Error("failed to load data", slog.String("path", cfg.Data.Path), slog.Any("error", err))
		return exitLoad
	}
	defer func() {
		if err := hdb.Close(); err != nil {
			logger.Warn("failed to close database", slog.Any("error", err))
		}
	}()
	logger.Info("table loaded",
		slog.String("table", schema.Table),
		slog.String("engine", schema.Dialect),
		slog.Int("columns", len(schema.Columns)),
	)

	// Initialize services
	provider, closeProvider, err := newProvider(ctx, cfg)
	if err != nil {
		logger.Error("failed to create completion provider", slog.Any("error", err))
		return exitConfig
	}
	defer closeProvider()

	registry := prometheus.NewRegistry()
	chatService := chatbot.NewChatService(provider, hdb, schema,
		chatbot.WithLogger(logger),
		chatbot.WithMetrics(observability.NewMetrics(registry)),
		chatbot.WithModel(cfg.LLM.ModelName()),
	)

	if opts.serve {
		return serveAPI(ctx, cfg, chatService, registry, logger)
	}

	question := opts.question
	if question == "" {
		question, err = readQuestion(os.Stdin, os.Stdout)
		if err != nil {
			logger.Error("failed to read question", slog.Any("error", err))
			return exitFailure
		}
	}

	answer, err := chatService.Ask(ctx, question)
	if err != nil {
		logger.Error("question failed", slog.String("query", answer.Query), slog.Any("error", err))
		return exitCode(err)
	}

	fmt.Println(answer.Result.Rows)
	return exitOK
}

func newProvider(ctx context.Context, cfg *config.Config) (llm.CompletionProvider, func(), error) {
	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		client, err := llm.NewGeminiClient(ctx, cfg.Gemini.APIKey)
		if err != nil {
			return nil, nil, err
		}
		return llm.NewGeminiAIProvider(client, cfg.LLM.ModelName()), func() { _ = client.Close() }, nil
	case config.ProviderOpenAI:
		client := llm.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
		return llm.NewOpenAIProvider(client, cfg.LLM.ModelName()), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

func serveAPI(ctx context.Context, cfg *config.Config, chatService *chatbot.ChatService, registry *prometheus.Registry, logger *slog.Logger) int {
	if cfg.Log.SlogLevel() > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	chatController := chatbot.NewChatController(chatService, logger)
	router, err := server.NewRouter(cfg.CORS, chatController, registry, logger)
	if err != nil {
		logger.Error("failed to build router", slog.Any("error", err))
		return exitConfig
	}

	if err := server.New(cfg.Server.Addr, router, logger).Run(ctx); err != nil {
		logger.Error("api server failed", slog.Any("error", err))
		return exitFailure
	}
	return exitOK
}

// readQuestion prints the prompt and reads one line. A final line without a
// newline is accepted.
func readQuestion(in io.Reader, out io.Writer) (string, error) {
	if _, err := fmt.Fprint(out, questionPrompt); err != nil {
		return "", err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, chatbot.ErrLoad):
		return exitLoad
	case errors.Is(err, chatbot.ErrRemote):
		return exitRemote
	case errors.Is(err, chatbot.ErrQuery):
		return exitQuery
	default:
		return exitFailure
	}
}
