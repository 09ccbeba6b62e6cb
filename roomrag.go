package roomrag

import (
	"context"
	"errors"
	"io"

	"github.com/w-h-a/roomrag/embedder"
	"github.com/w-h-a/roomrag/internal/service/question"
	"github.com/w-h-a/roomrag/internal/service/ranker"
	"github.com/w-h-a/roomrag/storer"
	"github.com/w-h-a/roomrag/synthesizer"
)

// Answer is what a caller gets back for one question. A nil Answer means no
// transcript segment was relevant enough to ground one.
type Answer struct {
	QuestionId string  `json:"questionId"`
	Answer     *string `json:"answer"`
}

// RoomRAG is built once at startup; its collaborators are reused by every
// request until Close.
type RoomRAG struct {
	question *question.Service
	closers  []io.Closer
}

func (r *RoomRAG) AnswerQuestion(ctx context.Context, roomId string, text string) (Answer, error) {
	q, err := r.question.AnswerQuestion(ctx, roomId, text)
	if err != nil {
		return Answer{}, err
	}
	return Answer{QuestionId: q.Id, Answer: q.Answer}, nil
}

func (r *RoomRAG) ListQuestions(ctx context.Context, roomId string) ([]storer.Question, error) {
	return r.question.ListQuestions(ctx, roomId)
}

func (r *RoomRAG) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func New(
	embedder embedder.Embedder,
	synthesizer synthesizer.Synthesizer,
	segments storer.SegmentStorer,
	questions storer.QuestionStorer,
	opts ...Option,
) *RoomRAG {
	options := NewOptions(opts...)

	rnk := ranker.New(
		segments,
		ranker.WithDimensions(options.Dimensions),
	)

	svc := question.New(
		embedder,
		rnk,
		synthesizer,
		questions,
		question.WithTimeouts(options.Timeouts),
	)

	return &RoomRAG{
		question: svc,
		closers:  options.Closers,
	}
}
