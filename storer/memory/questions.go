package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/w-h-a/roomrag/storer"
)

type memoryQuestionStorer struct {
	options   storer.Options
	questions map[string]storer.Question
	byRoom    map[string][]string
	mtx       sync.RWMutex
}

func (s *memoryQuestionStorer) Insert(ctx context.Context, question string, roomId string, answer *string) (*storer.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	q := storer.Question{
		Id:        uuid.New().String(),
		RoomId:    roomId,
		Question:  question,
		Answer:    copyAnswer(answer),
		CreatedAt: time.Now().UTC(),
	}

	s.questions[q.Id] = q
	s.byRoom[roomId] = append(s.byRoom[roomId], q.Id)

	created := q
	created.Answer = copyAnswer(q.Answer)

	return &created, nil
}

func (s *memoryQuestionStorer) Get(ctx context.Context, id string) (*storer.Question, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	q, ok := s.questions[id]
	if !ok {
		return nil, storer.ErrNotFound
	}

	q.Answer = copyAnswer(q.Answer)

	return &q, nil
}

func (s *memoryQuestionStorer) ListByRoom(ctx context.Context, roomId string) ([]storer.Question, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	ids := s.byRoom[roomId]
	questions := make([]storer.Question, 0, len(ids))

	// newest first
	for i := len(ids) - 1; i >= 0; i-- {
		q := s.questions[ids[i]]
		q.Answer = copyAnswer(q.Answer)
		questions = append(questions, q)
	}

	return questions, nil
}

func copyAnswer(answer *string) *string {
	if answer == nil {
		return nil
	}
	cpy := *answer
	return &cpy
}

func NewQuestionStorer(opts ...storer.Option) *memoryQuestionStorer {
	options := storer.NewOptions(opts...)

	s := &memoryQuestionStorer{
		options:   options,
		questions: map[string]storer.Question{},
		byRoom:    map[string][]string{},
		mtx:       sync.RWMutex{},
	}

	return s
}
