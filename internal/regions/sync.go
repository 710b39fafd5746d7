package regions

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// SyncResult counts rows written by Sync.
type SyncResult struct {
	RegionsCreated   int
	RegionsUpdated   int
	TemplatesCreated int
	TemplatesUpdated int
}

// Sync persists the registered definitions. Existing rows are updated only
// when a stored attribute differs from the registry.
func (r *Registry) Sync(ctx context.Context, regionRepo RegionRepository, templateRepo TemplateRepository) (SyncResult, error) {
	var result SyncResult
	if regionRepo == nil || templateRepo == nil {
		return result, ErrRepositoryUnavailable
	}

	for _, region := range r.Regions() {
		stored, err := regionRepo.GetByKey(ctx, region.Key)
		switch {
		case isNotFound(err):
			if _, err := regionRepo.Create(ctx, region); err != nil {
				return result, fmt.Errorf("sync region %s: %w", region.Key, err)
			}
			result.RegionsCreated++
		case err != nil:
			return result, fmt.Errorf("sync region %s: %w", region.Key, err)
		case stored.Title != region.Title || stored.Inherited != region.Inherited:
			update := *region
			update.ID = stored.ID
			update.UpdatedAt = r.now().UTC()
			if _, err := regionRepo.Update(ctx, &update); err != nil {
				return result, fmt.Errorf("sync region %s: %w", region.Key, err)
			}
			result.RegionsUpdated++
		}
	}

	for _, tpl := range r.Templates() {
		stored, err := templateRepo.GetByKey(ctx, tpl.Key)
		switch {
		case isNotFound(err):
			if _, err := templateRepo.Create(ctx, tpl); err != nil {
				return result, fmt.Errorf("sync template %s: %w", tpl.Key, err)
			}
			result.TemplatesCreated++
		case err != nil:
			return result, fmt.Errorf("sync template %s: %w", tpl.Key, err)
		case templateChanged(stored, tpl):
			update := *tpl
			update.ID = stored.ID
			update.UpdatedAt = r.now().UTC()
			if _, err := templateRepo.Update(ctx, &update); err != nil {
				return result, fmt.Errorf("sync template %s: %w", tpl.Key, err)
			}
			result.TemplatesUpdated++
		}
	}

	r.logger.Info("registry.sync.completed",
		"regions_created", result.RegionsCreated,
		"regions_updated", result.RegionsUpdated,
		"templates_created", result.TemplatesCreated,
		"templates_updated", result.TemplatesUpdated,
	)
	return result, nil
}

func templateChanged(stored, current *Template) bool {
	return stored.Title != current.Title ||
		stored.Path != current.Path ||
		stored.Singleton != current.Singleton ||
		stored.EnforceLeaf != current.EnforceLeaf ||
		!slices.Equal(stored.RegionKeys, current.RegionKeys)
}

func isNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
