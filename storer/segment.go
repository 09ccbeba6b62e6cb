package storer

import "time"

// Segment is one transcribed chunk of a room's audio. Both the transcription
// and the embedding are written once at ingestion and never change.
type Segment struct {
	Id            string
	RoomId        string
	Transcription string
	Embedding     []float32
	CreatedAt     time.Time
}

// ScoredSegment pairs a segment with its cosine similarity to a query.
type ScoredSegment struct {
	Segment
	Similarity float64
}
