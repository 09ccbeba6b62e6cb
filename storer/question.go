package storer

import "time"

// Question is a persisted question about a room. A nil Answer means no
// segment was relevant enough to ground one.
type Question struct {
	Id        string
	RoomId    string
	Question  string
	Answer    *string
	CreatedAt time.Time
}

func (q *Question) Answered() bool {
	return q.Answer != nil
}
