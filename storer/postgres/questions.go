package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/w-h-a/roomrag/storer"
)

type postgresQuestionStorer struct {
	options storer.Options
	conn    *sql.DB
}

func (p *postgresQuestionStorer) Insert(ctx context.Context, question string, roomId string, answer *string) (*storer.Question, error) {
	query := `
		INSERT INTO questions (
			id,
			room_id,
			question,
			answer
		)
		VALUES ($1, $2, $3, $4)
		RETURNING id, room_id, question, answer, created_at
	`

	var nullable sql.NullString
	if answer != nil {
		nullable = sql.NullString{String: *answer, Valid: true}
	}

	row := p.conn.QueryRowContext(
		ctx,
		query,
		uuid.New().String(),
		roomId,
		question,
		nullable,
	)

	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storer.ErrNotCreated
	}
	if err != nil {
		return nil, err
	}

	return q, nil
}

func (p *postgresQuestionStorer) Get(ctx context.Context, id string) (*storer.Question, error) {
	query := `
		SELECT id, room_id, question, answer, created_at
		FROM questions
		WHERE id = $1
	`

	q, err := scanQuestion(p.conn.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storer.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return q, nil
}

func (p *postgresQuestionStorer) ListByRoom(ctx context.Context, roomId string) ([]storer.Question, error) {
	query := `
		SELECT id, room_id, question, answer, created_at
		FROM questions
		WHERE room_id = $1
		ORDER BY created_at DESC, id
	`

	rows, err := p.conn.QueryContext(ctx, query, roomId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []storer.Question{}

	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return questions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuestion(s scanner) (*storer.Question, error) {
	var q storer.Question
	var answer sql.NullString

	if err := s.Scan(
		&q.Id,
		&q.RoomId,
		&q.Question,
		&answer,
		&q.CreatedAt,
	); err != nil {
		return nil, err
	}

	if answer.Valid {
		q.Answer = &answer.String
	}

	return &q, nil
}

func NewQuestionStorer(opts ...storer.Option) storer.QuestionStorer {
	options := storer.NewOptions(opts...)

	p := &postgresQuestionStorer{
		options: options,
		conn:    options.DB,
	}

	if p.conn == nil {
		p.conn = mustConnect(options.Context, options.Location, "question storer")
	}

	return p
}
