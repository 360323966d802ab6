package reconcile

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/orbital-group/meteor-cli/internal/catalog"
	"github.com/orbital-group/meteor-cli/internal/dataset"
	"github.com/orbital-group/meteor-cli/internal/model"
)

// Fetcher retrieves one raw result page. Satisfied by *catalog.Client.
type Fetcher interface {
	FetchPage(ctx context.Context, page int) (string, error)
}

// Options parameterizes one reconciliation session. Shallow rescans and
// deep history scans run the same pipeline with different values here.
type Options struct {
	InputPath  string
	OutputPath string
	// CheckpointPath defaults to OutputPath + ".checkpoint.yaml".
	CheckpointPath string

	StartPage       int
	MaxPages        int // pages attempted at most; 0 means 1
	YearFloor       int // 0 disables the year-floor heuristic
	CheckpointEvery int // 0 disables periodic checkpoints

	Session string // session id for the checkpoint sidecar
}

func (o *Options) checkpointPath() string {
	if o.CheckpointPath != "" {
		return o.CheckpointPath
	}
	return o.OutputPath + ".checkpoint.yaml"
}

// RunState is the explicit per-session state threaded through the crawl
// stages: the page cursor, the growing lookup index, and the counters the
// checkpointer and summary read. Nothing about a session lives outside it.
type RunState struct {
	Page    int
	Index   *LookupIndex
	Records []model.CatalogRecord

	PagesScanned int
	PagesFailed  int
	Stop         StopReason
}

// Summary is what a finished session reports to the operator.
type Summary struct {
	PagesScanned int
	PagesFailed  int
	Indexed      int
	Filled       int
	Remaining    int
	Stop         StopReason
	// NoData is set when no page in the whole session yielded a single
	// entry, the signature of a total extraction failure rather than a
	// normally exhausted source.
	NoData bool
}

// Pipeline drives one session: fetch → extract → index → stop-check →
// checkpoint, page by page, strictly sequentially, then a final apply and
// save. The fetcher's internal limiter provides the inter-page pacing.
type Pipeline struct {
	fetcher Fetcher
	opts    Options
	log     *zap.Logger
}

// NewPipeline creates a reconciliation pipeline.
func NewPipeline(fetcher Fetcher, opts Options) *Pipeline {
	return &Pipeline{
		fetcher: fetcher,
		opts:    opts,
		log:     zap.L().With(zap.String("component", "reconcile.pipeline")),
	}
}

// Run executes the session.
//
// A missing input dataset aborts immediately. Page-level fetch failures
// are logged and the crawl advances to the next page; the failed page is
// not retried. Any other error aborts the session, leaving whatever the
// last periodic checkpoint wrote on disk intact.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	records, err := dataset.Load(ctx, p.opts.InputPath)
	if err != nil {
		return nil, err
	}

	if n := CleanNames(records); n > 0 {
		p.log.Info("cleaned provisional-name markers", zap.Int("names", n))
	}

	unresolved := countUnresolved(records)
	p.log.Info("session start",
		zap.Int("records", len(records)),
		zap.Int("unresolved", unresolved),
		zap.Int("start_page", p.opts.StartPage),
		zap.Int("max_pages", p.opts.MaxPages),
		zap.Int("year_floor", p.opts.YearFloor),
	)

	if unresolved == 0 {
		p.log.Info("nothing to resolve")
		return &Summary{Remaining: 0}, nil
	}

	state := &RunState{
		Page:    p.opts.StartPage,
		Index:   NewLookupIndex(),
		Records: records,
	}
	stop := &StopEvaluator{YearFloor: p.opts.YearFloor}

	maxPages := p.opts.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}
	lastPage := p.opts.StartPage + maxPages

	for state.Page < lastPage {
		if err := ctx.Err(); err != nil {
			return p.summary(state), eris.Wrap(err, "reconcile: session cancelled")
		}

		if err := p.scanPage(ctx, state, stop); err != nil {
			return p.summary(state), err
		}

		if state.Stop != StopNone {
			break
		}

		state.Page++

		if p.checkpointDue(state.Page) {
			if err := p.checkpoint(state); err != nil {
				return p.summary(state), err
			}
		}
	}

	if state.Stop == StopNone {
		state.Stop = StopPageLimit
	}

	// Final apply and save, then the terminal checkpoint.
	res := Apply(state.Records, state.Index)
	if err := dataset.Save(p.opts.OutputPath, state.Records); err != nil {
		return p.summary(state), err
	}
	if err := WriteCheckpoint(p.opts.checkpointPath(), Checkpoint{
		Session:    p.opts.Session,
		Page:       state.Page,
		Indexed:    state.Index.Len(),
		Resolved:   countResolved(state.Records),
		StopReason: string(state.Stop),
	}); err != nil {
		p.log.Warn("checkpoint write failed", zap.Error(err))
	}

	sum := p.summary(state)
	sum.Filled = res.Filled
	sum.Remaining = res.Remaining

	p.log.Info("session complete",
		zap.Int("pages_scanned", sum.PagesScanned),
		zap.Int("pages_failed", sum.PagesFailed),
		zap.Int("indexed", sum.Indexed),
		zap.Int("filled", sum.Filled),
		zap.Int("remaining", sum.Remaining),
		zap.String("stop", string(sum.Stop)),
	)

	return sum, nil
}

// scanPage runs one iteration: fetch, extract, fold into the index, and
// evaluate the stop heuristics.
func (p *Pipeline) scanPage(ctx context.Context, state *RunState, stop *StopEvaluator) error {
	body, err := p.fetcher.FetchPage(ctx, state.Page)
	if err != nil {
		var fe *catalog.FetchError
		if errors.As(err, &fe) {
			// Remote unavailable: log, count, move on to the next page.
			p.log.Warn("page fetch failed, skipping",
				zap.Int("page", state.Page),
				zap.String("kind", string(fe.Kind)),
				zap.Error(fe.Err),
			)
			state.PagesFailed++
			return nil
		}
		return eris.Wrapf(err, "reconcile: page %d", state.Page)
	}

	page := catalog.Extract(body)
	state.PagesScanned++

	for _, e := range page.Entries {
		state.Index.Add(e.Name, e.Code)
	}

	if len(page.Entries) > 0 {
		p.log.Info("indexed page",
			zap.Int("page", state.Page),
			zap.Int("entries", len(page.Entries)),
			zap.Int("index_size", state.Index.Len()),
		)
	}

	state.Stop = stop.Evaluate(state.Page, page)
	return nil
}

// checkpointDue reports whether a periodic checkpoint should run after
// advancing to page. Mirrors the every-K-pages cadence, skipping the
// session's first page.
func (p *Pipeline) checkpointDue(page int) bool {
	k := p.opts.CheckpointEvery
	return k > 0 && page > p.opts.StartPage && page%k == 0
}

// checkpoint applies the partial index to the full dataset, overwrites
// the output file, and records the cursor. Synchronous: the crawl loop
// pauses while it runs, so a checkpoint never races a fetch.
func (p *Pipeline) checkpoint(state *RunState) error {
	res := Apply(state.Records, state.Index)
	if err := dataset.Save(p.opts.OutputPath, state.Records); err != nil {
		return err
	}

	cp := Checkpoint{
		Session:  p.opts.Session,
		Page:     state.Page,
		Indexed:  state.Index.Len(),
		Resolved: countResolved(state.Records),
	}
	if err := WriteCheckpoint(p.opts.checkpointPath(), cp); err != nil {
		p.log.Warn("checkpoint write failed", zap.Error(err))
	}

	p.log.Info("checkpoint",
		zap.Int("page", state.Page),
		zap.Int("filled_so_far", res.Filled),
		zap.Int("remaining", res.Remaining),
	)
	return nil
}

func (p *Pipeline) summary(state *RunState) *Summary {
	return &Summary{
		PagesScanned: state.PagesScanned,
		PagesFailed:  state.PagesFailed,
		Indexed:      state.Index.Len(),
		Remaining:    countUnresolved(state.Records),
		Stop:         state.Stop,
		NoData:       state.Index.Len() == 0,
	}
}

func countUnresolved(records []model.CatalogRecord) int {
	n := 0
	for i := range records {
		if !records[i].ID.Resolved() {
			n++
		}
	}
	return n
}

func countResolved(records []model.CatalogRecord) int {
	return len(records) - countUnresolved(records)
}
