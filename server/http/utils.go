package http

import (
	"encoding/json"
	"net/http"

	"github.com/w-h-a/roomrag"
)

func statusFor(kind roomrag.ErrorKind) int {
	switch kind {
	case roomrag.KindInvalidInput:
		return http.StatusBadRequest
	case roomrag.KindEmbeddingFailed, roomrag.KindSynthesisFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	kind := roomrag.KindOf(err)

	// provider and storage details stay in the logs
	msg := "internal error"
	if kind == roomrag.KindInvalidInput {
		msg = err.Error()
	}

	writeJSON(w, statusFor(kind), errorResponse{Error: msg, Kind: string(kind)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
