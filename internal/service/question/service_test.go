package question

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/roomrag/internal/service"
	"github.com/w-h-a/roomrag/internal/service/ranker"
	"github.com/w-h-a/roomrag/storer"
	"github.com/w-h-a/roomrag/storer/memory"
)

type fakeEmbedder struct {
	vec   []float32
	err   error
	block bool
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.vec, f.err
}

type fakeSynthesizer struct {
	answer   string
	err      error
	question string
	snippets []string
	calls    int
	// runs inside Synthesize, after the call is recorded
	hook func()
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, question string, snippets []string) (string, error) {
	f.calls++
	f.question = question
	f.snippets = snippets
	if f.hook != nil {
		f.hook()
	}
	return f.answer, f.err
}

type fakeQuestionStorer struct {
	storer.QuestionStorer
	created *storer.Question
	err     error
	ctxErr  error
	calls   int
	hook    func()
}

func (f *fakeQuestionStorer) Insert(ctx context.Context, question string, roomId string, answer *string) (*storer.Question, error) {
	f.calls++
	if f.hook != nil {
		f.hook()
	}
	f.ctxErr = ctx.Err()
	return f.created, f.err
}

type fakeSegmentStorer struct {
	storer.SegmentStorer
	err error
}

func (f *fakeSegmentStorer) Search(ctx context.Context, roomId string, vector []float32, threshold float64, limit int) ([]storer.ScoredSegment, error) {
	return nil, f.err
}

var query = []float32{1, 0}

func withSimilarity(sim float64) []float32 {
	return []float32{float32(sim), float32(math.Sqrt(1 - sim*sim))}
}

type fixture struct {
	segments    storer.SegmentStorer
	embedder    *fakeEmbedder
	synthesizer *fakeSynthesizer
	questions   storer.QuestionStorer
	service     *Service
}

func newFixture(t *testing.T, segments storer.SegmentStorer, questions storer.QuestionStorer, opts ...Option) *fixture {
	t.Helper()

	if segments == nil {
		segments = memory.NewSegmentStorer()
	}

	if questions == nil {
		questions = memory.NewQuestionStorer()
	}

	f := &fixture{
		segments:    segments,
		embedder:    &fakeEmbedder{vec: query},
		synthesizer: &fakeSynthesizer{answer: "The sky is blue."},
		questions:   questions,
	}

	f.service = New(
		f.embedder,
		ranker.New(f.segments, ranker.WithDimensions(2)),
		f.synthesizer,
		f.questions,
		opts...,
	)

	return f
}

func TestAnswerQuestion(t *testing.T) {
	ctx := context.Background()

	t.Run("answers from relevant segments only", func(t *testing.T) {
		segments := memory.NewSegmentStorer()
		segments.Add(ctx, "R1", "the sky is blue", withSimilarity(0.9))
		segments.Add(ctx, "R1", "cats are mammals", withSimilarity(0.3))

		f := newFixture(t, segments, nil)

		q, err := f.service.AnswerQuestion(ctx, "R1", "what color is the sky")
		require.NoError(t, err)

		require.NotNil(t, q.Answer)
		assert.Equal(t, "The sky is blue.", *q.Answer)
		assert.Equal(t, "what color is the sky", f.synthesizer.question)
		assert.Equal(t, []string{"the sky is blue"}, f.synthesizer.snippets)

		stored, err := f.questions.Get(ctx, q.Id)
		require.NoError(t, err)
		require.NotNil(t, stored.Answer)
		assert.Equal(t, *q.Answer, *stored.Answer)
		assert.Equal(t, "R1", stored.RoomId)
	})

	t.Run("empty room persists a nil answer", func(t *testing.T) {
		f := newFixture(t, nil, nil)

		q, err := f.service.AnswerQuestion(ctx, "R2", "anything")
		require.NoError(t, err)

		assert.Nil(t, q.Answer)
		assert.Equal(t, 0, f.synthesizer.calls)

		stored, err := f.questions.ListByRoom(ctx, "R2")
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, "anything", stored[0].Question)
		assert.Nil(t, stored[0].Answer)
	})

	t.Run("snippets reach the synthesizer best first", func(t *testing.T) {
		segments := memory.NewSegmentStorer()
		segments.Add(ctx, "R1", "0.72", withSimilarity(0.72))
		segments.Add(ctx, "R1", "0.85", withSimilarity(0.85))
		segments.Add(ctx, "R1", "0.95", withSimilarity(0.95))
		segments.Add(ctx, "R1", "0.75", withSimilarity(0.75))

		f := newFixture(t, segments, nil)

		_, err := f.service.AnswerQuestion(ctx, "R1", "which")
		require.NoError(t, err)

		assert.Equal(t, []string{"0.95", "0.85", "0.75"}, f.synthesizer.snippets)
	})

	t.Run("rejects empty input before any call", func(t *testing.T) {
		tests := []struct {
			name     string
			roomId   string
			question string
		}{
			{name: "empty question", roomId: "R1", question: ""},
			{name: "blank question", roomId: "R1", question: "   \n\t"},
			{name: "empty room", roomId: "", question: "what"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				questions := &fakeQuestionStorer{}
				f := newFixture(t, nil, questions)

				_, err := f.service.AnswerQuestion(ctx, tt.roomId, tt.question)
				assert.ErrorIs(t, err, service.ErrInvalidInput)
				assert.Equal(t, 0, f.embedder.calls)
				assert.Equal(t, 0, questions.calls)
			})
		}
	})

	t.Run("embedding failure persists nothing", func(t *testing.T) {
		questions := &fakeQuestionStorer{}
		f := newFixture(t, nil, questions)
		f.embedder.err = errors.New("provider timeout")

		_, err := f.service.AnswerQuestion(ctx, "R1", "what")
		require.Error(t, err)
		assert.ErrorIs(t, err, service.ErrEmbeddingFailed)
		assert.Equal(t, 0, questions.calls)
	})

	t.Run("embedding timeout is an embedding failure", func(t *testing.T) {
		questions := &fakeQuestionStorer{}
		f := newFixture(t, nil, questions, WithTimeouts(Timeouts{Embed: 10 * time.Millisecond}))
		f.embedder.block = true

		_, err := f.service.AnswerQuestion(ctx, "R1", "what")
		require.Error(t, err)
		assert.ErrorIs(t, err, service.ErrEmbeddingFailed)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 0, questions.calls)
	})

	t.Run("unexpected embedding size is an embedding failure", func(t *testing.T) {
		questions := &fakeQuestionStorer{}
		f := newFixture(t, nil, questions)
		f.embedder.vec = []float32{1, 0, 0}

		_, err := f.service.AnswerQuestion(ctx, "R1", "what")
		require.Error(t, err)
		assert.ErrorIs(t, err, service.ErrEmbeddingFailed)
		assert.ErrorIs(t, err, service.ErrDimensionMismatch)
		assert.Equal(t, service.KindEmbeddingFailed, service.KindOf(err))
		assert.Equal(t, 0, questions.calls)
	})

	t.Run("store failure is a retrieval failure", func(t *testing.T) {
		boom := errors.New("connection refused")
		questions := &fakeQuestionStorer{}
		f := newFixture(t, &fakeSegmentStorer{err: boom}, questions)

		_, err := f.service.AnswerQuestion(ctx, "R1", "what")
		require.Error(t, err)
		assert.ErrorIs(t, err, service.ErrRetrievalFailed)
		assert.ErrorIs(t, err, service.ErrStoreUnavailable)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 0, f.synthesizer.calls)
		assert.Equal(t, 0, questions.calls)
	})

	t.Run("synthesis failure persists nothing", func(t *testing.T) {
		segments := memory.NewSegmentStorer()
		segments.Add(ctx, "R1", "the sky is blue", withSimilarity(0.9))

		questions := memory.NewQuestionStorer()
		f := newFixture(t, segments, questions)
		f.synthesizer.err = errors.New("model overloaded")

		_, err := f.service.AnswerQuestion(ctx, "R1", "what color is the sky")
		require.Error(t, err)
		assert.ErrorIs(t, err, service.ErrSynthesisFailed)

		stored, err := questions.ListByRoom(ctx, "R1")
		require.NoError(t, err)
		assert.Empty(t, stored)
	})

	t.Run("insert without a record is a persistence failure", func(t *testing.T) {
		tests := []struct {
			name   string
			storer *fakeQuestionStorer
			cause  error
		}{
			{name: "nil record", storer: &fakeQuestionStorer{}, cause: storer.ErrNotCreated},
			{name: "not created", storer: &fakeQuestionStorer{err: storer.ErrNotCreated}, cause: storer.ErrNotCreated},
			{name: "database error", storer: &fakeQuestionStorer{err: errors.New("disk full")}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t, nil, tt.storer)

				_, err := f.service.AnswerQuestion(ctx, "R1", "what")
				require.Error(t, err)
				assert.ErrorIs(t, err, service.ErrPersistenceFailed)
				if tt.cause != nil {
					assert.ErrorIs(t, err, tt.cause)
				}
				assert.Equal(t, 1, tt.storer.calls)
			})
		}
	})

	t.Run("abandoned request does not insert", func(t *testing.T) {
		segments := memory.NewSegmentStorer()
		segments.Add(ctx, "R1", "the sky is blue", withSimilarity(0.9))

		questions := &fakeQuestionStorer{}
		f := newFixture(t, segments, questions)

		cctx, cancel := context.WithCancel(ctx)
		defer cancel()
		f.synthesizer.hook = cancel

		_, err := f.service.AnswerQuestion(cctx, "R1", "what color is the sky")
		require.Error(t, err)
		assert.ErrorIs(t, err, service.ErrPersistenceFailed)
		assert.Equal(t, 0, questions.calls)
	})

	t.Run("submitted insert is not cancelled with the caller", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		defer cancel()

		questions := &fakeQuestionStorer{
			created: &storer.Question{Id: "q1", RoomId: "R1", Question: "what"},
			hook:    cancel,
		}
		f := newFixture(t, nil, questions)

		q, err := f.service.AnswerQuestion(cctx, "R1", "what")
		require.NoError(t, err)
		assert.Equal(t, "q1", q.Id)
		assert.NoError(t, questions.ctxErr)
	})
}

func TestListQuestions(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t, nil, nil)

	first, err := f.service.AnswerQuestion(ctx, "R1", "first")
	require.NoError(t, err)
	second, err := f.service.AnswerQuestion(ctx, "R1", "second")
	require.NoError(t, err)

	got, err := f.service.ListQuestions(ctx, "R1")
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, second.Id, got[0].Id)
	assert.Equal(t, first.Id, got[1].Id)

	_, err = f.service.ListQuestions(ctx, " ")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}
