package reconcile

import (
	"strings"

	"github.com/orbital-group/meteor-cli/internal/model"
)

// LookupIndex accumulates name → Bulletin id pairs over one crawl
// session. Exact and lowercase keys are kept side by side so the applier
// can try the strict match before the case-insensitive one.
//
// The index is transient: it is rebuilt from scratch every session and
// never persisted. Within a session, a name seen twice keeps the later
// id; collisions after normalization are rare and harmless for backfill,
// and are deliberately not detected.
type LookupIndex struct {
	exact map[string]model.ExternalID
	lower map[string]model.ExternalID
}

// NewLookupIndex creates an empty index.
func NewLookupIndex() *LookupIndex {
	return &LookupIndex{
		exact: make(map[string]model.ExternalID),
		lower: make(map[string]model.ExternalID),
	}
}

// Add records one scraped (name, code) pair, populating both maps in the
// same pass.
func (ix *LookupIndex) Add(name string, code int64) {
	id := model.ResolvedID(code)
	if !id.Resolved() {
		return
	}
	name = CleanName(name)
	if name == "" {
		return
	}
	ix.exact[name] = id
	ix.lower[CompareKey(name)] = id
}

// Lookup resolves a name: exact match first, lowercase second.
func (ix *LookupIndex) Lookup(name string) (model.ExternalID, bool) {
	name = strings.TrimSpace(name)
	if id, ok := ix.exact[name]; ok {
		return id, true
	}
	if id, ok := ix.lower[CompareKey(name)]; ok {
		return id, true
	}
	return model.ExternalID{}, false
}

// Len returns the number of distinct exact names indexed.
func (ix *LookupIndex) Len() int {
	return len(ix.exact)
}
