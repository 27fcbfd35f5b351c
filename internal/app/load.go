package app

import (
	"fmt"
)

// LoadWorkspace loads every .hcl file under the configured workspace path.
func (a *App) LoadWorkspace() error {
	a.logger.Debug("Loading workspace...", "path", a.config.WorkspacePath)
	if err := a.registry.LoadWorkspace(a.ctx, a.config.WorkspacePath); err != nil {
		return fmt.Errorf("failed to load workspace: %w", err)
	}
	return nil
}
