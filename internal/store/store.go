// Package store holds the gorm-backed repositories. Handlers and the
// recurring engine talk to these instead of the raw *gorm.DB so tests can
// swap in fakes.
package store

import (
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
