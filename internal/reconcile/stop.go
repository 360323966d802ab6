package reconcile

import (
	"go.uber.org/zap"

	"github.com/orbital-group/meteor-cli/internal/catalog"
)

// StopReason says why a crawl session ended.
type StopReason string

const (
	StopNone      StopReason = ""
	StopEmptyPage StopReason = "empty_page"
	StopYearFloor StopReason = "year_floor"
	StopPageLimit StopReason = "page_limit"
)

// StopEvaluator decides when a paginated crawl is done. The source has no
// explicit last-page marker, so two independent best-effort heuristics
// stand in; either one halts the session.
type StopEvaluator struct {
	// YearFloor halts once the oldest year token on a page falls below
	// it. Valid only because pages are sorted year-descending: when the
	// oldest record on a page crosses the floor, every later page is
	// guaranteed older still. Zero disables the heuristic.
	YearFloor int
}

// Evaluate inspects one extracted page.
//
// An empty page is read as an exhausted source and stops the crawl, even
// though it could equally be a transient failure upstream of the
// extractor. A page without year tokens simply skips the floor check.
func (s *StopEvaluator) Evaluate(pageIndex int, page *catalog.Page) StopReason {
	if len(page.Entries) == 0 {
		zap.L().Info("stop: empty page, source presumed exhausted",
			zap.Int("page", pageIndex),
		)
		return StopEmptyPage
	}

	if s.YearFloor > 0 {
		if min, ok := page.MinYear(); ok && min < s.YearFloor {
			zap.L().Info("stop: reached historical data",
				zap.Int("page", pageIndex),
				zap.Int("oldest_year", min),
				zap.Int("floor", s.YearFloor),
			)
			return StopYearFloor
		}
	}

	return StopNone
}
