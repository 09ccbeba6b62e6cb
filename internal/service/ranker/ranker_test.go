package ranker

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/roomrag/internal/service"
	"github.com/w-h-a/roomrag/storer"
	"github.com/w-h-a/roomrag/storer/memory"
)

var query = []float32{1, 0}

// withSimilarity returns a unit vector whose cosine similarity to query is sim.
func withSimilarity(sim float64) []float32 {
	return []float32{float32(sim), float32(math.Sqrt(1 - sim*sim))}
}

type fakeSegmentStorer struct {
	results []storer.ScoredSegment
	err     error
	calls   int
}

func (f *fakeSegmentStorer) ListByRoom(ctx context.Context, roomId string) ([]storer.Segment, error) {
	return nil, f.err
}

func (f *fakeSegmentStorer) Search(ctx context.Context, roomId string, vector []float32, threshold float64, limit int) ([]storer.ScoredSegment, error) {
	f.calls++
	return f.results, f.err
}

func transcriptions(ranked []storer.ScoredSegment) []string {
	out := []string{}
	for _, r := range ranked {
		out = append(out, r.Transcription)
	}
	return out
}

func TestRank(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps only segments above the threshold", func(t *testing.T) {
		segments := memory.NewSegmentStorer()
		segments.Add(ctx, "R1", "the sky is blue", withSimilarity(0.9))
		segments.Add(ctx, "R1", "cats are mammals", withSimilarity(0.3))

		r := New(segments, WithDimensions(2))

		got, err := r.Rank(ctx, "R1", query)
		require.NoError(t, err)

		assert.Equal(t, []string{"the sky is blue"}, transcriptions(got))
		assert.InDelta(t, 0.9, got[0].Similarity, 1e-6)
	})

	t.Run("empty room is an empty result", func(t *testing.T) {
		r := New(memory.NewSegmentStorer(), WithDimensions(2))

		got, err := r.Rank(ctx, "R2", query)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("never exceeds top k", func(t *testing.T) {
		segments := memory.NewSegmentStorer()
		segments.Add(ctx, "R1", "0.72", withSimilarity(0.72))
		segments.Add(ctx, "R1", "0.85", withSimilarity(0.85))
		segments.Add(ctx, "R1", "0.95", withSimilarity(0.95))
		segments.Add(ctx, "R1", "0.75", withSimilarity(0.75))

		r := New(segments, WithDimensions(2))

		got, err := r.Rank(ctx, "R1", query)
		require.NoError(t, err)

		assert.Equal(t, []string{"0.95", "0.85", "0.75"}, transcriptions(got))
	})

	t.Run("threshold is strict", func(t *testing.T) {
		fake := &fakeSegmentStorer{results: []storer.ScoredSegment{
			{Segment: storer.Segment{RoomId: "R1", Transcription: "exactly"}, Similarity: SimilarityThreshold},
		}}

		r := New(fake, WithDimensions(2))

		got, err := r.Rank(ctx, "R1", query)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("holds a pushed-down store to the contract", func(t *testing.T) {
		fake := &fakeSegmentStorer{results: []storer.ScoredSegment{
			{Segment: storer.Segment{RoomId: "R1", Transcription: "low"}, Similarity: 0.5},
			{Segment: storer.Segment{RoomId: "R9", Transcription: "other room"}, Similarity: 0.99},
			{Segment: storer.Segment{RoomId: "R1", Transcription: "b"}, Similarity: 0.8},
			{Segment: storer.Segment{RoomId: "R1", Transcription: "a"}, Similarity: 0.9},
			{Segment: storer.Segment{RoomId: "R1", Transcription: "c"}, Similarity: 0.75},
			{Segment: storer.Segment{RoomId: "R1", Transcription: "d"}, Similarity: 0.71},
		}}

		r := New(fake, WithDimensions(2))

		got, err := r.Rank(ctx, "R1", query)
		require.NoError(t, err)

		assert.Equal(t, []string{"a", "b", "c"}, transcriptions(got))
	})

	t.Run("equal similarity keeps storage order", func(t *testing.T) {
		segments := memory.NewSegmentStorer()
		segments.Add(ctx, "R1", "first", withSimilarity(0.8))
		segments.Add(ctx, "R1", "second", withSimilarity(0.8))
		segments.Add(ctx, "R1", "third", withSimilarity(0.8))
		segments.Add(ctx, "R1", "fourth", withSimilarity(0.8))

		r := New(segments, WithDimensions(2))

		got, err := r.Rank(ctx, "R1", query)
		require.NoError(t, err)

		assert.Equal(t, []string{"first", "second", "third"}, transcriptions(got))
	})

	t.Run("is deterministic", func(t *testing.T) {
		segments := memory.NewSegmentStorer()
		for _, sim := range []float64{0.71, 0.9, 0.8, 0.8, 0.95, 0.2} {
			segments.Add(ctx, "R1", "segment", withSimilarity(sim))
		}

		r := New(segments, WithDimensions(2))

		first, err := r.Rank(ctx, "R1", query)
		require.NoError(t, err)
		second, err := r.Rank(ctx, "R1", query)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		fake := &fakeSegmentStorer{}

		r := New(fake, WithDimensions(3))

		_, err := r.Rank(ctx, "R1", query)
		require.Error(t, err)
		assert.ErrorIs(t, err, service.ErrDimensionMismatch)
		assert.Equal(t, 0, fake.calls)
	})

	t.Run("store unavailable", func(t *testing.T) {
		boom := errors.New("connection refused")
		fake := &fakeSegmentStorer{err: boom}

		r := New(fake, WithDimensions(2))

		_, err := r.Rank(ctx, "R1", query)
		require.Error(t, err)
		assert.ErrorIs(t, err, service.ErrStoreUnavailable)
		assert.ErrorIs(t, err, boom)
	})
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		r := New(&fakeSegmentStorer{})

		assert.Equal(t, TopK, r.options.TopK)
		assert.Equal(t, SimilarityThreshold, r.options.Threshold)
		assert.Equal(t, DefaultDimensions, r.Dimensions())
	})

	t.Run("requires a store", func(t *testing.T) {
		assert.Panics(t, func() { New(nil) })
	})
}
