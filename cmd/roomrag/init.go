package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/w-h-a/roomrag"
	"github.com/w-h-a/roomrag/embedder"
	googleembedder "github.com/w-h-a/roomrag/embedder/google"
	openaiembedder "github.com/w-h-a/roomrag/embedder/openai"
	"github.com/w-h-a/roomrag/generator"
	anthropicgenerator "github.com/w-h-a/roomrag/generator/anthropic"
	googlegenerator "github.com/w-h-a/roomrag/generator/google"
	openaigenerator "github.com/w-h-a/roomrag/generator/openai"
	"github.com/w-h-a/roomrag/storer"
	"github.com/w-h-a/roomrag/storer/memory"
	"github.com/w-h-a/roomrag/storer/postgres"
	"github.com/w-h-a/roomrag/synthesizer/generative"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// initRoomRAG builds every long-lived client once; the returned RoomRAG
// closes them.
func initRoomRAG(ctx context.Context, g *Globals) (*roomrag.RoomRAG, error) {
	client := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	var closers []io.Closer

	// Create embedder
	embedOpts := []embedder.Option{
		embedder.WithApiKey(g.EmbedderKey),
		embedder.WithModel(g.EmbedderModel),
		embedder.WithDimensions(g.EmbedderDimensions),
		embedder.WithHTTPClient(client),
	}

	var emb embedder.Embedder
	switch g.Embedder {
	case "openai":
		emb = openaiembedder.NewEmbedder(embedOpts...)
	default:
		e := googleembedder.NewEmbedder(embedOpts...)
		closers = append(closers, e)
		emb = e
	}

	// Create answer model
	genOpts := []generator.Option{
		generator.WithApiKey(g.GeneratorKey),
		generator.WithMaxTokens(g.MaxTokens),
		generator.WithHTTPClient(client),
	}

	var gen generator.Generator
	switch g.Generator {
	case "openai":
		gen = openaigenerator.NewGenerator(append(genOpts, generator.WithModel(orDefault(g.GeneratorModel, "gpt-4o-mini")))...)
	case "anthropic":
		gen = anthropicgenerator.NewGenerator(append(genOpts, generator.WithModel(orDefault(g.GeneratorModel, "claude-sonnet-4-5")))...)
	default:
		gm := googlegenerator.NewGenerator(append(genOpts, generator.WithModel(g.GeneratorModel))...)
		closers = append(closers, gm)
		gen = gm
	}

	syn := generative.NewSynthesizer(gen)

	// Create storers
	var segments storer.SegmentStorer
	var questions storer.QuestionStorer

	if len(g.DatabaseURL) > 0 {
		db, err := postgres.Connect(ctx, g.DatabaseURL)
		if err != nil {
			for _, c := range closers {
				c.Close()
			}
			return nil, err
		}
		closers = append(closers, db)
		segments = postgres.NewSegmentStorer(storer.WithDB(db))
		questions = postgres.NewQuestionStorer(storer.WithDB(db))
	} else {
		slog.WarnContext(ctx, "no database configured, using the in-memory store")
		segments = memory.NewSegmentStorer()
		questions = memory.NewQuestionStorer()
	}

	opts := []roomrag.Option{
		roomrag.WithDimensions(g.EmbedderDimensions),
		roomrag.WithTimeouts(timeouts(g)),
	}
	for _, c := range closers {
		opts = append(opts, roomrag.WithCloser(c))
	}

	return roomrag.New(emb, syn, segments, questions, opts...), nil
}

func orDefault(value string, fallback string) string {
	if len(value) > 0 {
		return value
	}
	return fallback
}
