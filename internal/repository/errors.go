package repository

import (
	"errors"
	"strconv"
)

// ErrNotFound is returned when a single-row lookup (a character, an API key) matches
// nothing. Services translate it into app_errors.ErrNotFound or into a fallback, so
// callers never see sql.ErrNoRows or an empty PostgREST result.
var ErrNotFound = errors.New("repository: not found")

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
