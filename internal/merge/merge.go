// Package merge combines two dataset snapshots into one.
package merge

import (
	"sort"

	"go.uber.org/zap"

	"github.com/orbital-group/meteor-cli/internal/model"
	"github.com/orbital-group/meteor-cli/internal/reconcile"
)

// Result reports what a merge kept and dropped.
type Result struct {
	Records    []model.CatalogRecord
	Base       int
	Incoming   int
	Duplicates int // records collapsed away
}

// Merge combines a base snapshot with an incoming one, keeping exactly one
// record per distinct name.
//
// This is survivorship, not field merge: the losing duplicate is discarded
// whole, including fields the winner lacks. Survivorship priority is a
// deterministic pre-sort, so the outcome does not depend on which snapshot
// a record arrived in:
//
//  1. a record with a valid coordinate pair beats one without
//  2. a record with a resolved id beats one without
//  3. remaining ties break on the raw name, then on the id value
func Merge(base, incoming []model.CatalogRecord) Result {
	combined := make([]model.CatalogRecord, 0, len(base)+len(incoming))
	combined = append(combined, base...)
	combined = append(combined, incoming...)

	sort.SliceStable(combined, func(i, j int) bool {
		a, b := &combined[i], &combined[j]

		ka, kb := reconcile.CompareKey(a.Name), reconcile.CompareKey(b.Name)
		if ka != kb {
			return ka < kb
		}
		if ac, bc := a.HasCoordinates(), b.HasCoordinates(); ac != bc {
			return ac
		}
		if ar, br := a.ID.Resolved(), b.ID.Resolved(); ar != br {
			return ar
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID.Int64() < b.ID.Int64()
	})

	var kept []model.CatalogRecord
	lastKey := ""
	for i := range combined {
		key := reconcile.CompareKey(combined[i].Name)
		if key == "" {
			continue
		}
		if len(kept) > 0 && key == lastKey {
			continue
		}
		kept = append(kept, combined[i])
		lastKey = key
	}

	res := Result{
		Records:    kept,
		Base:       len(base),
		Incoming:   len(incoming),
		Duplicates: len(base) + len(incoming) - len(kept),
	}

	zap.L().Info("merge: snapshots combined",
		zap.Int("base", res.Base),
		zap.Int("incoming", res.Incoming),
		zap.Int("kept", len(kept)),
		zap.Int("collapsed", res.Duplicates),
	)

	return res
}
