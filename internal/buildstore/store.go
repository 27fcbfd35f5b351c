// Package buildstore defines build history: one Record per finished build
// and the Store interface that keeps them.
//
// Build numbers are allocated per project by the store, starting at 1. A
// store is shared by every build of a host process, so implementations must
// be safe for concurrent use.
package buildstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/stepproxy/internal/build"
)

// Record is the outcome of one build.
type Record struct {
	ID         uuid.UUID
	Project    string
	Number     int
	Result     build.Result
	Parameters map[string]string
	StartedAt  time.Time
	Duration   time.Duration
	Error      string
}

// Store keeps build history.
type Store interface {
	// NextNumber allocates the next build number for project. Numbers are
	// never handed out twice, even if the build is never saved.
	NextNumber(ctx context.Context, project string) (int, error)

	// Save records a finished build. Saving the same ID again replaces the
	// earlier record.
	Save(ctx context.Context, rec Record) error

	// List returns the records of project, newest first. An empty project
	// lists every project.
	List(ctx context.Context, project string) ([]Record, error)

	Close() error
}
