package poll

import (
	"context"
	"strings"

	"github.com/scoates/vagranttop/internal/collector"
	"github.com/scoates/vagranttop/internal/correlate"
	"github.com/scoates/vagranttop/internal/load"
	"github.com/scoates/vagranttop/internal/models"
)

// Result is everything one cycle hands to the renderer.
type Result struct {
	Entries  []models.ProcessEntry
	Statuses models.StatusHistogram
	Total    int
	System   *models.SystemStats
}

// Poller drives one snapshot -> correlate -> aggregate pass per cycle.
type Poller struct {
	collector *collector.Collector
	resolver  *correlate.Resolver
	loads     *load.Fetcher
}

func New(c *collector.Collector, r *correlate.Resolver, l *load.Fetcher) *Poller {
	return &Poller{collector: c, resolver: r, loads: l}
}

// Cycle runs one full poll. An inventory refresh failure propagates; a
// failed load fetch degrades to a placeholder inside the Fetcher.
func (p *Poller) Cycle(ctx context.Context) (*Result, error) {
	p.resolver.BeginCycle()

	snap, err := p.collector.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.correlateEntries(ctx, snap.Entries); err != nil {
		return nil, err
	}

	sys, err := p.collector.SystemStats(ctx)
	if err != nil {
		return nil, err
	}

	return &Result{
		Entries:  snap.Entries,
		Statuses: snap.Statuses,
		Total:    snap.Total,
		System:   sys,
	}, nil
}

// correlateEntries fills the VM fields of every retained worker. On a miss
// the name field keeps the raw comment so the operator can still see which
// instance the process claims to back.
func (p *Poller) correlateEntries(ctx context.Context, entries []models.ProcessEntry) error {
	for i := range entries {
		e := &entries[i]
		comment, _ := correlate.Comment(e.CommandLine)
		rec, ok, err := p.resolver.Resolve(ctx, comment)
		if err != nil {
			return err
		}
		if ok {
			e.VMID = rec.ProviderInstanceID
			e.VMDirectory = rec.DirectoryBaseName
			e.VMName = rec.Name
			e.VMLoad = p.loads.Fetch(ctx, strings.TrimSpace(rec.IndexUUID))
		} else {
			e.VMID = ""
			e.VMDirectory = ""
			e.VMName = comment
			e.VMLoad = ""
		}
	}
	return nil
}
