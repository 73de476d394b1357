package janitor

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/rafael/ritmo/internal/store"
)

// Janitor prunes conversation sessions that have been idle longer than the
// configured TTL, on a cron schedule.
type Janitor struct {
	cron    *cron.Cron
	store   *store.Store
	ttlDays int
}

func New(st *store.Store, cronExpr string, ttlDays int) (*Janitor, error) {
	j := &Janitor{
		cron:    cron.New(),
		store:   st,
		ttlDays: ttlDays,
	}
	if _, err := j.cron.AddFunc(cronExpr, j.run); err != nil {
		return nil, fmt.Errorf("invalid prune cron %q: %w", cronExpr, err)
	}
	return j, nil
}

func (j *Janitor) Start() {
	j.cron.Start()
	slog.Info("janitor started", "ttl_days", j.ttlDays)
}

func (j *Janitor) Stop() {
	j.cron.Stop()
}

func (j *Janitor) run() {
	n, err := j.store.PruneSessions(j.ttlDays)
	if err != nil {
		slog.Error("janitor: pruning sessions", "error", err)
		return
	}
	if n > 0 {
		slog.Info("janitor: pruned stale sessions", "count", n)
	}
}
