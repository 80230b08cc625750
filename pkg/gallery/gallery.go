// Package gallery records which images have been generated.
//
// An Entry is written after every successful save. Stores hold at most one
// entry per date; putting a date again replaces its entry.
package gallery

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/dailyart/pkg/errors"
)

// Entry describes one generated image.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	Date      string    `json:"date"`
	Seed      string    `json:"seed"` // hex digest
	Palette   string    `json:"palette"`
	Style     string    `json:"style"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Format    string    `json:"format"`
	Path      string    `json:"path"`
	Thumb     string    `json:"thumb,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists gallery entries.
type Store interface {
	// Put inserts or replaces the entry for e.Date.
	Put(ctx context.Context, e Entry) error

	// Get returns the entry for date, or a NOT_FOUND error.
	Get(ctx context.Context, date string) (Entry, error)

	// List returns every entry ordered by date, oldest first.
	List(ctx context.Context) ([]Entry, error)

	Close() error
}

// prepare fills the ID and timestamp of a new entry.
func prepare(e Entry, now time.Time) (Entry, error) {
	if err := errors.ValidateDate(e.Date); err != nil {
		return Entry{}, err
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now.UTC()
	}
	return e, nil
}

func notFound(date string) error {
	return errors.New(errors.ErrCodeNotFound, "no gallery entry for %s", date)
}
