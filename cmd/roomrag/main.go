package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/w-h-a/roomrag"
	"github.com/w-h-a/roomrag/server"
	httpserver "github.com/w-h-a/roomrag/server/http"
)

type Globals struct {
	// Storage config
	DatabaseURL string `help:"Postgres URL for segments and questions; empty uses the in-memory store" env:"DATABASE_URL" default:""`

	// Embedder config
	Embedder           string `help:"Embedding provider (google or openai)" env:"EMBEDDER" default:"google" enum:"google,openai"`
	EmbedderKey        string `help:"API Key for the embedder" env:"EMBEDDER_API_KEY" default:""`
	EmbedderModel      string `help:"Model identifier for the embedder" env:"EMBEDDER_MODEL" default:""`
	EmbedderDimensions int    `help:"Dimensions of every stored segment embedding" env:"EMBEDDER_DIMENSIONS" default:"768"`

	// Generator config
	Generator      string `help:"Answer provider (google, openai or anthropic)" env:"GENERATOR" default:"google" enum:"google,openai,anthropic"`
	GeneratorKey   string `help:"API Key for the generator" env:"GENERATOR_API_KEY" default:""`
	GeneratorModel string `help:"Model identifier for the generator" env:"GENERATOR_MODEL" default:""`
	MaxTokens      int    `help:"Maximum tokens per generated answer" env:"MAX_TOKENS" default:"1024"`

	// Pipeline config
	EmbedTimeout      time.Duration `help:"Timeout for embedding the question" env:"EMBED_TIMEOUT" default:"10s"`
	RetrieveTimeout   time.Duration `help:"Timeout for ranking segments" env:"RETRIEVE_TIMEOUT" default:"5s"`
	SynthesizeTimeout time.Duration `help:"Timeout for synthesizing the answer" env:"SYNTHESIZE_TIMEOUT" default:"30s"`
	PersistTimeout    time.Duration `help:"Timeout for persisting the question" env:"PERSIST_TIMEOUT" default:"5s"`

	// Log config
	LogLevel  string `help:"Log level (debug, info, warn, error)" env:"LOG_LEVEL" default:"info"`
	LogFormat string `help:"Log format (json or text)" env:"LOG_FORMAT" default:"json" enum:"json,text"`
}

type ServeCmd struct {
	Address string `help:"Listen address" env:"ADDRESS" default:":3333"`
}

func (c *ServeCmd) Run(g *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rag, err := initRoomRAG(ctx, g)
	if err != nil {
		return err
	}
	defer rag.Close()

	srv := httpserver.NewServer(
		server.WithAddress(c.Address),
		httpserver.WithRoutes(httpserver.NewQuestionRoutes(rag)),
	)

	return srv.Start(ctx)
}

type AskCmd struct {
	Room     string `help:"Room identifier" required:""`
	Question string `arg:"" help:"Question about the room's transcript"`
}

func (c *AskCmd) Run(g *Globals) error {
	ctx := context.Background()

	rag, err := initRoomRAG(ctx, g)
	if err != nil {
		return err
	}
	defer rag.Close()

	answer, err := rag.AnswerQuestion(ctx, c.Room, c.Question)
	if err != nil {
		return err
	}

	fmt.Printf("Question: %s\n", answer.QuestionId)
	if answer.Answer == nil {
		fmt.Println("No relevant content found in this room.")
		return nil
	}
	fmt.Println(*answer.Answer)

	return nil
}

var cli struct {
	Globals

	Serve ServeCmd `cmd:"" help:"Serve the question API over HTTP"`
	Ask   AskCmd   `cmd:"" help:"Ask a single question"`
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	kctx := kong.Parse(&cli,
		kong.Name("roomrag"),
		kong.Description("Answer questions about a room's transcript."),
	)

	slog.SetDefault(slog.New(newLogHandler(cli.LogFormat, cli.LogLevel)))

	kctx.FatalIfErrorf(kctx.Run(&cli.Globals))
}

func newLogHandler(format string, level string) slog.Handler {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}

	if format == "text" {
		return slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.NewJSONHandler(os.Stderr, opts)
}

func timeouts(g *Globals) roomrag.Timeouts {
	return roomrag.Timeouts{
		Embed:      g.EmbedTimeout,
		Retrieve:   g.RetrieveTimeout,
		Synthesize: g.SynthesizeTimeout,
		Persist:    g.PersistTimeout,
	}
}
