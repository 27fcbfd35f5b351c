package build

import "context"

// Builder is a single build step.
//
// Prebuild runs for every step of a build before any step performs; returning
// false aborts the build. Perform does the work and reports success. A non-nil
// error means the step could not run at all (cancellation, I/O) and is always
// treated as a failure.
type Builder interface {
	Prebuild(ctx context.Context, b *Build) bool
	Perform(ctx context.Context, b *Build) (bool, error)
}

// Result is the terminal state of a build.
type Result string

const (
	ResultSuccess Result = "SUCCESS"
	ResultFailure Result = "FAILURE"
	ResultAborted Result = "ABORTED"
)
