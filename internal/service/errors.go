package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrInvalidInput          = errors.New("invalid input")
	ErrOverlappingSuspension = errors.New("suspension overlaps an existing suspension")
	ErrCeilingExceeded       = errors.New("accumulated progress would exceed the target")
)

// notFound maps the store's record-not-found onto ErrNotFound so it reaches
// the handler as a 404. The store returns it from reads and from inside
// write transactions when a locked row has vanished; any other error passes
// through unchanged.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}
