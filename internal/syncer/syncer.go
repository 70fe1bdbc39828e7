// Package syncer drives one sync cycle: scrape, fingerprint, reconcile,
// persist.
//
// The controller is a small state machine
// (IDLE → SCRAPING → UNCHANGED|RECONCILING → DONE, FAILED from anywhere).
// Its load-bearing property is the fingerprint short-circuit: when the
// scraped fixture set hashes to the persisted fingerprint, the run ends in
// UNCHANGED without a single backend call.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/ymichaeli/fixture-sync/internal/fixture"
	"github.com/ymichaeli/fixture-sync/internal/logger"
	"github.com/ymichaeli/fixture-sync/internal/reconcile"
	"github.com/ymichaeli/fixture-sync/internal/storage"
)

// State is a phase of the sync cycle.
type State string

const (
	StateIdle        State = "IDLE"
	StateScraping    State = "SCRAPING"
	StateUnchanged   State = "UNCHANGED"
	StateReconciling State = "RECONCILING"
	StateDone        State = "DONE"
	StateFailed      State = "FAILED"
)

// Fetcher scrapes the current raw fixture list.
type Fetcher interface {
	FetchFixtures(ctx context.Context) ([]fixture.Raw, error)
}

// Replacer runs full-replace reconciliation against the calendar backend.
type Replacer interface {
	FullReplace(ctx context.Context, fixtures []fixture.Canonical) (*reconcile.Result, error)
}

// StateStore persists sync state between runs.
type StateStore interface {
	Load() (*storage.SyncState, error)
	Save(state *storage.SyncState) error
}

// Controller orchestrates one run-to-completion sync cycle. It holds no
// state across invocations beyond what the StateStore persists.
type Controller struct {
	fetcher    Fetcher
	normalizer *fixture.Normalizer
	replacer   Replacer
	store      StateStore

	state State
	now   func() time.Time
}

// New creates a Controller.
func New(fetcher Fetcher, normalizer *fixture.Normalizer, replacer Replacer, store StateStore) *Controller {
	return &Controller{
		fetcher:    fetcher,
		normalizer: normalizer,
		replacer:   replacer,
		store:      store,
		state:      StateIdle,
		now:        time.Now,
	}
}

// Outcome reports how a sync cycle ended.
type Outcome struct {
	State       State
	Fingerprint string
	MatchCount  int

	// Result is set only when reconciliation ran.
	Result *reconcile.Result
}

// Run executes one sync cycle. State is persisted only after reconciliation
// ran, fully or partially; an unreachable backend leaves the previous
// fingerprint in place so the next run retries from the same changed state.
func (c *Controller) Run(ctx context.Context) (*Outcome, error) {
	started := c.now()
	defer func() {
		logger.RecordTiming("sync.run", time.Since(started))
	}()

	c.setState(StateScraping)
	raws, err := c.fetcher.FetchFixtures(ctx)
	if err != nil {
		c.setState(StateFailed)
		return nil, fmt.Errorf("scraping: %w", err)
	}

	if len(raws) == 0 {
		// Zero fixtures means the scrape found nothing usable. Never wipe
		// the calendar over that; warn and leave everything as it was.
		logger.Warn("No fixtures found on website", nil)
		c.setState(StateDone)
		return &Outcome{State: StateDone}, nil
	}
	logger.Info("Found fixtures on website", logger.Fields{"count": len(raws)})

	fingerprint := fixture.Fingerprint(raws)

	persisted, err := c.store.Load()
	if err != nil {
		logger.Warn("Could not load sync state, treating as first run", nil)
		persisted = storage.NewSyncState()
	}

	if fingerprint == persisted.LastHash {
		logger.Info("No changes detected - calendar is up to date", nil)
		c.setState(StateUnchanged)
		return &Outcome{State: StateUnchanged, Fingerprint: fingerprint, MatchCount: len(raws)}, nil
	}
	logger.Info("Changes detected - updating calendar", nil)

	canonical := make([]fixture.Canonical, 0, len(raws))
	for i := range raws {
		fx, err := c.normalizer.Normalize(&raws[i])
		if err != nil {
			logger.Warn("Skipping fixture", logger.Fields{"key": raws[i].DedupeKey()})
			continue
		}
		canonical = append(canonical, *fx)
	}

	c.setState(StateReconciling)
	result, err := c.replacer.FullReplace(ctx, canonical)
	if err != nil {
		c.setState(StateFailed)
		return nil, fmt.Errorf("reconciling: %w", err)
	}

	newState := &storage.SyncState{
		LastHash:       fingerprint,
		LastSync:       c.now().Format(time.RFC3339),
		EventIDs:       result.EventIDs,
		LastMatchCount: len(raws),
	}
	if err := c.store.Save(newState); err != nil {
		// The sync itself completed; the next run will just redo it.
		logger.Error("Saving sync state failed, next run will resync", nil, err)
	}

	c.setState(StateDone)
	logger.Info("Calendar sync completed", logger.Fields{
		"created": result.Created,
		"deleted": result.Deleted,
		"failed":  result.Failed,
	})

	return &Outcome{
		State:       StateDone,
		Fingerprint: fingerprint,
		MatchCount:  len(raws),
		Result:      result,
	}, nil
}

func (c *Controller) setState(next State) {
	logger.Debug("Sync state transition", logger.Fields{
		"from": string(c.state),
		"to":   string(next),
	})
	c.state = next
}
