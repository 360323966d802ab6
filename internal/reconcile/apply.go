package reconcile

import (
	"go.uber.org/zap"

	"github.com/orbital-group/meteor-cli/internal/model"
)

// ApplyResult summarizes one application of an index to the dataset.
type ApplyResult struct {
	Filled    int // ids resolved by this application
	Remaining int // records still unresolved afterwards
}

// Apply fills missing Bulletin ids on records from the index, in place.
//
// Records that already hold a resolved id are skipped outright, never
// re-looked-up: repeated applications against a growing index can only
// move records from unresolved to resolved, and an id once assigned is
// never replaced even when a later session maps the same name elsewhere.
// Applying the same index twice is therefore a no-op the second time.
func Apply(records []model.CatalogRecord, ix *LookupIndex) ApplyResult {
	var res ApplyResult

	for i := range records {
		r := &records[i]
		if r.ID.Resolved() {
			continue
		}

		id, ok := ix.Lookup(r.Name)
		if !ok {
			res.Remaining++
			continue
		}

		r.ID = id
		res.Filled++
	}

	zap.L().Debug("reconcile: applied index",
		zap.Int("indexed", ix.Len()),
		zap.Int("filled", res.Filled),
		zap.Int("remaining", res.Remaining),
	)

	return res
}

// CleanNames applies the display cleanup to every record name in place
// and returns how many names changed. Runs once per session, before any
// matching.
func CleanNames(records []model.CatalogRecord) int {
	changed := 0
	for i := range records {
		cleaned := CleanName(records[i].Name)
		if cleaned != records[i].Name {
			records[i].Name = cleaned
			changed++
		}
	}
	return changed
}
