package seed

import (
	"context"

	"github.com/marksync/marks/internal/domain"
	"github.com/marksync/marks/internal/engine"
	"github.com/marksync/marks/internal/logger"
)

// Importer writes seed entries into the store for one owner. Entries
// whose URL the owner already has are skipped, so re-running the import
// on restart does not duplicate records.
type Importer struct {
	store  engine.Store
	logger logger.Logger
}

func NewImporter(store engine.Store, log logger.Logger) *Importer {
	return &Importer{store: store, logger: log}
}

// Import creates the missing entries and returns how many were written.
// Invalid entries are logged and skipped rather than failing the batch.
func (i *Importer) Import(ctx context.Context, owner string, entries []Entry) (int, error) {
	existing, err := i.store.ListAll(ctx, owner)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool, len(existing))
	for _, b := range existing {
		seen[b.URL] = true
	}

	created := 0
	for _, e := range entries {
		url, title, err := domain.ValidateInput(e.URL, e.Title)
		if err != nil {
			i.logger.Warn("skipping invalid seed entry",
				logger.String("url", e.URL), logger.Error(err))
			continue
		}
		if seen[url] {
			continue
		}
		if _, err := i.store.Create(ctx, owner, url, title); err != nil {
			return created, err
		}
		seen[url] = true
		created++
	}
	return created, nil
}
