package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/w-h-a/roomrag/storer"
)

type memorySegmentStorer struct {
	options storer.Options
	// per room, in insertion order
	segments map[string][]storer.Segment
	mtx      sync.RWMutex
}

// Add records a segment that was transcribed and embedded elsewhere.
func (s *memorySegmentStorer) Add(ctx context.Context, roomId string, transcription string, vector []float32) (storer.Segment, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	cpy := make([]float32, len(vector))
	copy(cpy, vector)

	seg := storer.Segment{
		Id:            uuid.New().String(),
		RoomId:        roomId,
		Transcription: transcription,
		Embedding:     cpy,
		CreatedAt:     time.Now().UTC(),
	}

	s.segments[roomId] = append(s.segments[roomId], seg)

	return seg, nil
}

func (s *memorySegmentStorer) ListByRoom(ctx context.Context, roomId string) ([]storer.Segment, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	cpy := make([]storer.Segment, len(s.segments[roomId]))
	copy(cpy, s.segments[roomId])

	return cpy, nil
}

func (s *memorySegmentStorer) Search(ctx context.Context, roomId string, vector []float32, threshold float64, limit int) ([]storer.ScoredSegment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	candidates := make([]storer.ScoredSegment, 0, len(s.segments[roomId]))

	for _, seg := range s.segments[roomId] {
		candidates = append(candidates, storer.ScoredSegment{
			Segment:    seg,
			Similarity: storer.CosineSimilarity(seg.Embedding, vector),
		})
	}

	return storer.SelectAbove(candidates, threshold, limit), nil
}

func NewSegmentStorer(opts ...storer.Option) *memorySegmentStorer {
	options := storer.NewOptions(opts...)

	s := &memorySegmentStorer{
		options:  options,
		segments: map[string][]storer.Segment{},
		mtx:      sync.RWMutex{},
	}

	return s
}
