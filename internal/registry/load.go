package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/stepproxy/internal/build"
	"github.com/specialistvlad/stepproxy/internal/ctxlog"
	"github.com/specialistvlad/stepproxy/internal/fsutil"
	"github.com/specialistvlad/stepproxy/internal/model"
)

// configurable is implemented by projects whose declared steps the registry
// turns into builders.
type configurable interface {
	model.Buildable
	StepDeclarations() []*model.BuildStep
	SetBuilders([]build.Builder)
}

// LoadWorkspace parses every .hcl file under the given paths, registers the
// items they declare and instantiates all steps.
func (r *Registry) LoadWorkspace(ctx context.Context, paths ...string) error {
	logger := ctxlog.FromContext(ctx)
	parser := hclparse.NewParser()

	for _, root := range paths {
		logger.Debug("Registry loading workspace path...", "path", root)

		filePaths, err := fsutil.FindFiles(root, fsutil.WorkspaceExt)
		if err != nil {
			logger.Error("Failed to walk workspace directory", "path", root, "error", err)
			return err
		}
		if len(filePaths) == 0 {
			logger.Warn("No .hcl workspace files found in path", "path", root)
			continue
		}
		logger.Debug("Found HCL files to load", "files", filePaths)

		for _, filePath := range filePaths {
			hclFile, diags := parser.ParseHCLFile(filePath)
			if diags.HasErrors() {
				return fmt.Errorf("failed to parse HCL file %s: %w", filePath, diags)
			}

			items, diags := model.ParseFile(ctx, hclFile, filePath)
			if diags.HasErrors() {
				return fmt.Errorf("failed to process workspace file %s: %w", filePath, diags)
			}
			for _, item := range items {
				// Put replaces; within one load a repeated name is a mistake.
				if prev, exists := r.Item(item.Name()); exists {
					return fmt.Errorf("duplicate item '%s': declared at %s and %s",
						item.Name(), prev.Source(), item.Source())
				}
				if err := r.Put(item); err != nil {
					return err
				}
			}
			logger.Debug("Successfully loaded items from HCL file", "file", filePath, "items", len(items))
		}
	}

	if err := r.Instantiate(ctx); err != nil {
		return err
	}

	logger.Info("Workspace loaded successfully.", "items", len(r.AllItems()), "projects", len(r.Projects()))
	return nil
}

// Instantiate (re)creates the builders of every project from its declared
// steps. All problems are reported together.
func (r *Registry) Instantiate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	var errs []error

	for _, item := range r.AllItems() {
		project, ok := item.(configurable)
		if !ok {
			continue
		}

		decls := project.StepDeclarations()
		builders := make([]build.Builder, 0, len(decls))
		for _, decl := range decls {
			b, err := r.handlers.NewBuilder(ctx, decl)
			if err != nil {
				errs = append(errs, fmt.Errorf("project '%s': %w", project.FullName(), err))
				continue
			}
			builders = append(builders, b)
		}
		project.SetBuilders(builders)
		logger.Debug("Instantiated project steps.", "project", project.FullName(), "steps", len(builders))
	}

	if len(errs) > 0 {
		return fmt.Errorf("workspace validation failed: %w", errors.Join(errs...))
	}
	return nil
}
