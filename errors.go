package roomrag

import "github.com/w-h-a/roomrag/internal/service"

type ErrorKind = service.ErrorKind

const (
	KindInvalidInput      = service.KindInvalidInput
	KindDimensionMismatch = service.KindDimensionMismatch
	KindStoreUnavailable  = service.KindStoreUnavailable
	KindEmbeddingFailed   = service.KindEmbeddingFailed
	KindRetrievalFailed   = service.KindRetrievalFailed
	KindSynthesisFailed   = service.KindSynthesisFailed
	KindPersistenceFailed = service.KindPersistenceFailed
)

var (
	ErrInvalidInput      = service.ErrInvalidInput
	ErrDimensionMismatch = service.ErrDimensionMismatch
	ErrStoreUnavailable  = service.ErrStoreUnavailable
	ErrEmbeddingFailed   = service.ErrEmbeddingFailed
	ErrRetrievalFailed   = service.ErrRetrievalFailed
	ErrSynthesisFailed   = service.ErrSynthesisFailed
	ErrPersistenceFailed = service.ErrPersistenceFailed
)

func IsKind(err error, kind ErrorKind) bool {
	return service.IsKind(err, kind)
}

func KindOf(err error) ErrorKind {
	return service.KindOf(err)
}
