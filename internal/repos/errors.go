package repos

import (
	"errors"

	"gorm.io/gorm"
)

// isNotFound matches gorm's record-not-found even when it arrives wrapped,
// so lookups can report "no row" as a nil result instead of an error.
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
