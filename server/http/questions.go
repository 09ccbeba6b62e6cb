package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/w-h-a/roomrag"
	"github.com/w-h-a/roomrag/storer"
)

// Questioner is the part of roomrag.RoomRAG the question routes need.
type Questioner interface {
	AnswerQuestion(ctx context.Context, roomId string, text string) (roomrag.Answer, error)
	ListQuestions(ctx context.Context, roomId string) ([]storer.Question, error)
}

type createQuestionRequest struct {
	Question string `json:"question" validate:"required,min=1"`
}

type questionResponse struct {
	Id        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    *string   `json:"answer"`
	CreatedAt time.Time `json:"createdAt"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type QuestionRoutes struct {
	questioner Questioner
	validate   *validator.Validate
}

func (q *QuestionRoutes) Register(r *mux.Router) {
	r.HandleFunc("/rooms/{roomId}/questions", q.create).Methods(http.MethodPost)
	r.HandleFunc("/rooms/{roomId}/questions", q.list).Methods(http.MethodGet)
}

func (q *QuestionRoutes) create(w http.ResponseWriter, r *http.Request) {
	roomId := mux.Vars(r)["roomId"]

	var req createQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body", Kind: string(roomrag.KindInvalidInput)})
		return
	}

	if err := q.validate.Var(roomId, "required,min=1"); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "room id is required", Kind: string(roomrag.KindInvalidInput)})
		return
	}

	if err := q.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "question is required", Kind: string(roomrag.KindInvalidInput)})
		return
	}

	answer, err := q.questioner.AnswerQuestion(r.Context(), roomId, req.Question)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, answer)
}

func (q *QuestionRoutes) list(w http.ResponseWriter, r *http.Request) {
	roomId := mux.Vars(r)["roomId"]

	questions, err := q.questioner.ListQuestions(r.Context(), roomId)
	if err != nil {
		writeError(w, err)
		return
	}

	rsp := make([]questionResponse, 0, len(questions))
	for _, question := range questions {
		rsp = append(rsp, questionResponse{
			Id:        question.Id,
			Question:  question.Question,
			Answer:    question.Answer,
			CreatedAt: question.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, rsp)
}

func NewQuestionRoutes(questioner Questioner) *QuestionRoutes {
	if questioner == nil {
		panic("questioner is required")
	}

	return &QuestionRoutes{
		questioner: questioner,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}
