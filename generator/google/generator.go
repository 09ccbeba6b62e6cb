package google

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/w-h-a/roomrag/generator"
	genaiopt "google.golang.org/api/option"
)

const (
	defaultModel = "gemini-2.5-flash"
)

type googleGenerator struct {
	options generator.Options
	client  *genai.Client
	model   *genai.GenerativeModel
}

func (g *googleGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	rsp, err := g.model.GenerateContent(ctx, genai.Text(g.options.FullPrompt(prompt)))
	if err != nil {
		return "", err
	}

	if len(rsp.Candidates) == 0 || rsp.Candidates[0].Content == nil || len(rsp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no response from Google")
	}

	var b strings.Builder
	for _, part := range rsp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	result := b.String()
	if len(result) == 0 {
		return "", errors.New("no text in response from Google")
	}

	return result, nil
}

func (g *googleGenerator) Close() error {
	return g.client.Close()
}

func NewGenerator(opts ...generator.Option) *googleGenerator {
	options := generator.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	g := &googleGenerator{
		options: options,
	}

	// the api key only applies to genai's own transport, so HTTPClient is ignored
	client, err := genai.NewClient(
		options.Context,
		genaiopt.WithAPIKey(options.ApiKey),
	)
	if err != nil {
		detail := "failed to initialize client for google generator"
		slog.ErrorContext(options.Context, detail, "error", err)
		panic(detail)
	}

	g.client = client

	g.model = client.GenerativeModel(options.Model)
	g.model.SetMaxOutputTokens(int32(options.MaxTokens))

	return g
}
