package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"irisai/internal/xerrors"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Page is one window of a filtered listing.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
}

// normalizePage clamps page/size and returns the matching limit and offset.
func normalizePage(page, size int) (p, s, limit, offset int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size, size, (page - 1) * size
}

// storeErr passes classified errors through and marks everything else internal.
func storeErr(err error, message string) error {
	var xe *xerrors.Error
	if errors.As(err, &xe) {
		return err
	}
	return xerrors.Internal(err, message)
}

// validID reports whether id can name a stored row. Ids are UUIDs; anything
// else cannot exist.
func validID(id string) bool {
	return uuid.Validate(id) == nil
}

func utcNow() time.Time { return time.Now().UTC() }

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
