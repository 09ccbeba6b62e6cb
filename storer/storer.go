package storer

import (
	"context"
	"errors"
)

var (
	ErrNotCreated = errors.New("insert returned no record")
	ErrNotFound   = errors.New("record not found")
)

type SegmentStorer interface {
	ListByRoom(ctx context.Context, roomId string) ([]Segment, error)
	Search(ctx context.Context, roomId string, vector []float32, threshold float64, limit int) ([]ScoredSegment, error)
}

type QuestionStorer interface {
	Insert(ctx context.Context, question string, roomId string, answer *string) (*Question, error)
	Get(ctx context.Context, id string) (*Question, error)
	ListByRoom(ctx context.Context, roomId string) ([]Question, error)
}
