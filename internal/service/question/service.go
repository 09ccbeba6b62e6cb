package question

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/w-h-a/roomrag/embedder"
	"github.com/w-h-a/roomrag/internal/service"
	"github.com/w-h-a/roomrag/internal/service/ranker"
	"github.com/w-h-a/roomrag/storer"
	"github.com/w-h-a/roomrag/synthesizer"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/w-h-a/roomrag/internal/service/question")

// Service answers questions about a room from its transcript segments. It
// holds no per-request state and is safe for concurrent use.
type Service struct {
	options     Options
	embedder    embedder.Embedder
	ranker      *ranker.Ranker
	synthesizer synthesizer.Synthesizer
	questions   storer.QuestionStorer
}

// AnswerQuestion runs validate, embed, rank, gate, synthesize and persist in
// that order. The first failure aborts the rest and nothing is persisted
// unless every earlier step succeeded. No relevant segment is not a failure:
// the question is persisted with a nil answer.
func (s *Service) AnswerQuestion(ctx context.Context, roomId string, question string) (*storer.Question, error) {
	ctx, span := tracer.Start(ctx, "question.AnswerQuestion", trace.WithAttributes(
		attribute.String("room.id", roomId),
	))
	defer span.End()

	start := time.Now()

	q, err := s.answer(ctx, roomId, question)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(service.KindOf(err)))
		slog.ErrorContext(ctx, "failed to answer question", "room_id", roomId, "kind", service.KindOf(err), "error", err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("question.id", q.Id),
		attribute.Bool("question.answered", q.Answered()),
	)

	slog.InfoContext(ctx, "question answered", "room_id", roomId, "question_id", q.Id, "answered", q.Answered(), "duration", time.Since(start))

	return q, nil
}

func (s *Service) ListQuestions(ctx context.Context, roomId string) ([]storer.Question, error) {
	if len(strings.TrimSpace(roomId)) == 0 {
		return nil, service.NewError(service.KindInvalidInput, "room id is required", nil)
	}

	questions, err := s.questions.ListByRoom(ctx, roomId)
	if err != nil {
		return nil, service.NewError(service.KindStoreUnavailable, "list questions", err)
	}

	return questions, nil
}

func (s *Service) answer(ctx context.Context, roomId string, question string) (*storer.Question, error) {
	// 1. Validate
	if len(strings.TrimSpace(roomId)) == 0 {
		return nil, service.NewError(service.KindInvalidInput, "room id is required", nil)
	}

	if len(strings.TrimSpace(question)) == 0 {
		return nil, service.NewError(service.KindInvalidInput, "question is required", nil)
	}

	// 2. Embed
	vec, err := s.embed(ctx, question)
	if err != nil {
		return nil, err
	}

	// 3. Rank
	ranked, err := s.rank(ctx, roomId, vec)
	if err != nil {
		return nil, err
	}

	// 4. Gate
	var answer *string

	if len(ranked) > 0 {
		// 5. Synthesize
		text, err := s.synthesize(ctx, question, ranked)
		if err != nil {
			return nil, err
		}
		answer = &text
	} else {
		slog.DebugContext(ctx, "no segment cleared the similarity gate", "room_id", roomId)
	}

	// 6. Persist
	return s.persist(ctx, roomId, question, answer)
}

func (s *Service) embed(ctx context.Context, question string) ([]float32, error) {
	ctx, span := tracer.Start(ctx, "question.embed")
	defer span.End()

	ctx, cancel := withTimeout(ctx, s.options.Timeouts.Embed)
	defer cancel()

	vec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		span.RecordError(err)
		return nil, service.NewError(service.KindEmbeddingFailed, "embed question", err)
	}

	if want := s.ranker.Dimensions(); len(vec) != want {
		mismatch := service.NewError(
			service.KindDimensionMismatch,
			fmt.Sprintf("embedder returned %d dimensions, want %d", len(vec), want),
			nil,
		)
		span.RecordError(mismatch)
		return nil, service.NewError(service.KindEmbeddingFailed, "embed question", mismatch)
	}

	return vec, nil
}

func (s *Service) rank(ctx context.Context, roomId string, vec []float32) ([]storer.ScoredSegment, error) {
	ctx, span := tracer.Start(ctx, "question.rank")
	defer span.End()

	ctx, cancel := withTimeout(ctx, s.options.Timeouts.Retrieve)
	defer cancel()

	ranked, err := s.ranker.Rank(ctx, roomId, vec)
	if err != nil {
		span.RecordError(err)
		return nil, service.NewError(service.KindRetrievalFailed, "rank segments", err)
	}

	span.SetAttributes(attribute.Int("segments.ranked", len(ranked)))

	slog.DebugContext(ctx, "segments ranked", "room_id", roomId, "count", len(ranked))

	return ranked, nil
}

func (s *Service) synthesize(ctx context.Context, question string, ranked []storer.ScoredSegment) (string, error) {
	ctx, span := tracer.Start(ctx, "question.synthesize")
	defer span.End()

	ctx, cancel := withTimeout(ctx, s.options.Timeouts.Synthesize)
	defer cancel()

	snippets := make([]string, 0, len(ranked))
	for _, seg := range ranked {
		snippets = append(snippets, seg.Transcription)
	}

	text, err := s.synthesizer.Synthesize(ctx, question, snippets)
	if err != nil {
		span.RecordError(err)
		return "", service.NewError(service.KindSynthesisFailed, "synthesize answer", err)
	}

	return text, nil
}

// once the insert is submitted it must not be cancelled by the caller
func (s *Service) persist(ctx context.Context, roomId string, question string, answer *string) (*storer.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, service.NewError(service.KindPersistenceFailed, "request abandoned before insert", err)
	}

	ctx, span := tracer.Start(ctx, "question.persist")
	defer span.End()

	ctx, cancel := withTimeout(context.WithoutCancel(ctx), s.options.Timeouts.Persist)
	defer cancel()

	q, err := s.questions.Insert(ctx, question, roomId, answer)
	if errors.Is(err, storer.ErrNotCreated) || (err == nil && q == nil) {
		span.RecordError(storer.ErrNotCreated)
		return nil, service.NewError(service.KindPersistenceFailed, "insert returned no record", storer.ErrNotCreated)
	}
	if err != nil {
		span.RecordError(err)
		return nil, service.NewError(service.KindPersistenceFailed, "insert question", err)
	}

	return q, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func New(
	embedder embedder.Embedder,
	ranker *ranker.Ranker,
	synthesizer synthesizer.Synthesizer,
	questions storer.QuestionStorer,
	opts ...Option,
) *Service {
	if embedder == nil {
		panic("embedder is required")
	}

	if ranker == nil {
		panic("ranker is required")
	}

	if synthesizer == nil {
		panic("synthesizer is required")
	}

	if questions == nil {
		panic("question storer is required")
	}

	return &Service{
		options:     NewOptions(opts...),
		embedder:    embedder,
		ranker:      ranker,
		synthesizer: synthesizer,
		questions:   questions,
	}
}
