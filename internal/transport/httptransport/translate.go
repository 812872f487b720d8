package httptransport

import (
	"errors"

	errs "github.com/NastyaGoryachaya/coin-ticker-service/internal/errors"
	"github.com/NastyaGoryachaya/coin-ticker-service/internal/ports/errcode"
)

func FromServiceError(err error) errcode.Code {
	switch {
	case errors.Is(err, errs.ErrSnapshotNotReady):
		return errcode.SnapshotNotReady
	case errors.Is(err, errs.ErrInvalidID):
		return errcode.BadRequest
	default:
		return errcode.Internal
	}
}
