package proxy

import "errors"

var (
	// ErrNotFound means no item has the requested name.
	ErrNotFound = errors.New("no such project")

	// ErrNotBuildable means the item exists but has no build steps.
	ErrNotBuildable = errors.New("item is not a buildable project")

	// ErrNoSuchParameterDefinition means a supplied value names a parameter
	// the target project does not declare.
	ErrNoSuchParameterDefinition = errors.New("no such parameter definition")

	// ErrProxyCycle means a proxy targets a project that is already being
	// replayed higher up the same build.
	ErrProxyCycle = errors.New("proxy cycle")
)
