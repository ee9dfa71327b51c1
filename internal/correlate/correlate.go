package correlate

import (
	"context"

	"github.com/scoates/vagranttop/internal/models"
)

// Comment returns the token immediately following a literal "--comment" in
// the command line. A missing pair is a normal outcome, not an error.
func Comment(cmdline []string) (string, bool) {
	for i, arg := range cmdline {
		if arg == "--comment" && i+1 < len(cmdline) {
			return cmdline[i+1], true
		}
	}
	return "", false
}

// RefreshFunc re-fetches the inventory. Failure is fatal to the poll cycle.
type RefreshFunc func(ctx context.Context) (map[string]models.VMRecord, models.RunningInstanceMap, error)

// Resolver maps instance comments to machine records. When a lookup misses
// it refreshes the inventory once and retries, since the inventory can lag
// a freshly started VM; the refresh happens at most once per cycle no
// matter how many distinct comments go on to miss.
type Resolver struct {
	refresh   RefreshFunc
	machines  map[string]models.VMRecord
	running   models.RunningInstanceMap
	refreshed bool
}

func NewResolver(refresh RefreshFunc) *Resolver {
	return &Resolver{refresh: refresh}
}

// Prime performs the initial inventory fetch before the first cycle.
func (r *Resolver) Prime(ctx context.Context) error {
	machines, running, err := r.refresh(ctx)
	if err != nil {
		return err
	}
	r.machines, r.running = machines, running
	return nil
}

// BeginCycle re-arms the single self-healing refresh for a new poll cycle.
func (r *Resolver) BeginCycle() {
	r.refreshed = false
}

// Resolve looks the comment up, refreshing once on a miss. The second
// return reports whether a machine was found; the error is only non-nil
// when a triggered refresh failed.
func (r *Resolver) Resolve(ctx context.Context, comment string) (models.VMRecord, bool, error) {
	if rec, ok := r.lookup(comment); ok {
		return rec, true, nil
	}
	if r.refreshed {
		return models.VMRecord{}, false, nil
	}
	r.refreshed = true
	machines, running, err := r.refresh(ctx)
	if err != nil {
		return models.VMRecord{}, false, err
	}
	r.machines, r.running = machines, running
	rec, ok := r.lookup(comment)
	return rec, ok, nil
}

func (r *Resolver) lookup(comment string) (models.VMRecord, bool) {
	id, ok := r.running[comment]
	if !ok {
		return models.VMRecord{}, false
	}
	rec, ok := r.machines[id]
	return rec, ok
}
