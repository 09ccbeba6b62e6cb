package postgres

import (
	"context"
	"database/sql"

	"github.com/pgvector/pgvector-go"
	"github.com/w-h-a/roomrag/storer"
)

type postgresSegmentStorer struct {
	options storer.Options
	conn    *sql.DB
}

func (p *postgresSegmentStorer) ListByRoom(ctx context.Context, roomId string) ([]storer.Segment, error) {
	query := `
		SELECT
			id,
			room_id,
			transcription,
			embeddings,
			created_at
		FROM audio_chunks
		WHERE room_id = $1
		ORDER BY created_at, id
	`

	rows, err := p.conn.QueryContext(ctx, query, roomId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	segments := []storer.Segment{}

	for rows.Next() {
		var seg storer.Segment
		var vec pgvector.Vector

		if err := rows.Scan(
			&seg.Id,
			&seg.RoomId,
			&seg.Transcription,
			&vec,
			&seg.CreatedAt,
		); err != nil {
			return nil, err
		}

		seg.Embedding = vec.Slice()

		segments = append(segments, seg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return segments, nil
}

func (p *postgresSegmentStorer) Search(ctx context.Context, roomId string, vector []float32, threshold float64, limit int) ([]storer.ScoredSegment, error) {
	if limit < 1 {
		return []storer.ScoredSegment{}, nil
	}

	// <=> is cosine distance; ties fall back to insertion order, then id
	query := `
		SELECT
			id,
			room_id,
			transcription,
			embeddings,
			1 - (embeddings <=> $2) AS similarity,
			created_at
		FROM audio_chunks
		WHERE room_id = $1
			AND 1 - (embeddings <=> $2) > $3
		ORDER BY embeddings <=> $2, created_at, id
		LIMIT $4
	`

	rows, err := p.conn.QueryContext(ctx, query, roomId, pgvector.NewVector(vector), threshold, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scored := []storer.ScoredSegment{}

	for rows.Next() {
		var rec storer.ScoredSegment
		var vec pgvector.Vector

		if err := rows.Scan(
			&rec.Id,
			&rec.RoomId,
			&rec.Transcription,
			&vec,
			&rec.Similarity,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}

		rec.Embedding = vec.Slice()

		scored = append(scored, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return scored, nil
}

func NewSegmentStorer(opts ...storer.Option) storer.SegmentStorer {
	options := storer.NewOptions(opts...)

	p := &postgresSegmentStorer{
		options: options,
		conn:    options.DB,
	}

	if p.conn == nil {
		p.conn = mustConnect(options.Context, options.Location, "segment storer")
	}

	return p
}
