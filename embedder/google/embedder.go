package google

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/w-h-a/roomrag/embedder"
	genaiopt "google.golang.org/api/option"
)

const (
	defaultModel = "text-embedding-004"
)

type googleEmbedder struct {
	options embedder.Options
	client  *genai.Client
	model   *genai.EmbeddingModel
}

func (e *googleEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	rsp, err := e.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}

	if rsp == nil || rsp.Embedding == nil || len(rsp.Embedding.Values) == 0 {
		return nil, errors.New("no response from Google")
	}

	return rsp.Embedding.Values, nil
}

func (e *googleEmbedder) Close() error {
	return e.client.Close()
}

func taskType(name string) genai.TaskType {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "retrieval_query":
		return genai.TaskTypeRetrievalQuery
	case "semantic_similarity":
		return genai.TaskTypeSemanticSimilarity
	case "", "retrieval_document":
		return genai.TaskTypeRetrievalDocument
	default:
		return genai.TaskTypeUnspecified
	}
}

func NewEmbedder(opts ...embedder.Option) *googleEmbedder {
	options := embedder.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	e := &googleEmbedder{
		options: options,
	}

	// the api key only applies to genai's own transport, so HTTPClient is ignored
	client, err := genai.NewClient(
		options.Context,
		genaiopt.WithAPIKey(options.ApiKey),
	)
	if err != nil {
		detail := "failed to initialize client for google embedder"
		slog.ErrorContext(options.Context, detail, "error", err)
		panic(detail)
	}

	e.client = client

	// segments are embedded as documents at ingestion; queries share that space
	e.model = client.EmbeddingModel(options.Model)
	e.model.TaskType = taskType(options.TaskType)

	return e
}
