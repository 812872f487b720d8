package errcode

type Code string

const (
	NotFoundCoins    Code = "NOT_FOUND_COINS"
	SnapshotNotReady Code = "SNAPSHOT_NOT_READY"

	BadRequest Code = "BAD_REQUEST"
	Internal   Code = "INTERNAL_ERROR"
)
