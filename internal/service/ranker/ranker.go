package ranker

import (
	"context"
	"fmt"

	"github.com/w-h-a/roomrag/internal/service"
	"github.com/w-h-a/roomrag/storer"
)

// Ranker returns the segments of a room most similar to a query vector.
type Ranker struct {
	options  Options
	segments storer.SegmentStorer
}

func (r *Ranker) Dimensions() int {
	return r.options.Dimensions
}

// Rank returns at most TopK segments of the room whose similarity to vec is
// strictly above the threshold, best-first. Equal similarities keep storage
// order (created_at, then id). An empty room yields an empty slice.
func (r *Ranker) Rank(ctx context.Context, roomId string, vec []float32) ([]storer.ScoredSegment, error) {
	if len(vec) != r.options.Dimensions {
		return nil, service.NewError(
			service.KindDimensionMismatch,
			fmt.Sprintf("query vector has %d dimensions, want %d", len(vec), r.options.Dimensions),
			nil,
		)
	}

	candidates, err := r.segments.Search(ctx, roomId, vec, r.options.Threshold, r.options.TopK)
	if err != nil {
		return nil, service.NewError(service.KindStoreUnavailable, "search segments", err)
	}

	// the store may push the search down; hold it to the same contract
	inRoom := make([]storer.ScoredSegment, 0, len(candidates))
	for _, cand := range candidates {
		if cand.RoomId == roomId {
			inRoom = append(inRoom, cand)
		}
	}

	return storer.SelectAbove(inRoom, r.options.Threshold, r.options.TopK), nil
}

func New(segments storer.SegmentStorer, opts ...Option) *Ranker {
	if segments == nil {
		panic("segment storer is required")
	}

	options := NewOptions(opts...)

	if options.TopK <= 0 {
		options.TopK = TopK
	}

	if options.Dimensions <= 0 {
		options.Dimensions = DefaultDimensions
	}

	return &Ranker{
		options:  options,
		segments: segments,
	}
}
