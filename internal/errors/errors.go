package errors

import "errors"

var (
	// Ошибки получения тикера
	ErrNetwork      = errors.New("network error")
	ErrHTTPStatus   = errors.New("unexpected http status")
	ErrParse        = errors.New("parse error")
	ErrMissingField = errors.New("missing required field")

	// Ошибки кэша иконок
	ErrFilesystem = errors.New("filesystem error")
	ErrInvalidID  = errors.New("invalid coin id")

	ErrSnapshotNotReady = errors.New("snapshot not ready")
	ErrInternal         = errors.New("internal error")
)
