package generative

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/w-h-a/roomrag/generator"
	"github.com/w-h-a/roomrag/synthesizer"
)

type generativeSynthesizer struct {
	options   synthesizer.Options
	generator generator.Generator
}

func (s *generativeSynthesizer) Synthesize(ctx context.Context, question string, snippets []string) (string, error) {
	if len(snippets) == 0 {
		return "", errors.New("no snippets to answer from")
	}

	answer, err := s.generator.Generate(ctx, s.buildPrompt(question, snippets))
	if err != nil {
		return "", err
	}

	if len(strings.TrimSpace(answer)) == 0 {
		return "", errors.New("generator returned an empty answer")
	}

	return answer, nil
}

// snippets stay in the order given; earlier ones are the more relevant
func (s *generativeSynthesizer) buildPrompt(question string, snippets []string) string {
	var sb bytes.Buffer

	sb.WriteString("Based on the text provided below as context, answer the question clearly and precisely.\n")

	sb.WriteString("\nCONTEXT:\n")
	sb.WriteString(strings.Join(snippets, "\n\n"))
	sb.WriteString("\n")

	sb.WriteString("\nQUESTION:\n")
	sb.WriteString(strings.TrimSpace(question))
	sb.WriteString("\n")

	if len(s.options.Instructions) > 0 {
		sb.WriteString("\nINSTRUCTIONS:\n")
		for _, instruction := range s.options.Instructions {
			sb.WriteString(fmt.Sprintf("- %s;\n", instruction))
		}
		if len(s.options.ContextLabel) > 0 {
			sb.WriteString(fmt.Sprintf("- When quoting the context, refer to it as \"%s\".\n", s.options.ContextLabel))
		}
	}

	return sb.String()
}

func NewSynthesizer(gen generator.Generator, opts ...synthesizer.Option) synthesizer.Synthesizer {
	if gen == nil {
		panic("generator is required")
	}

	options := synthesizer.NewOptions(opts...)

	return &generativeSynthesizer{
		options:   options,
		generator: gen,
	}
}
