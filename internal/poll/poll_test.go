package poll

import (
	"context"
	"errors"
	"testing"

	"github.com/scoates/vagranttop/internal/correlate"
	"github.com/scoates/vagranttop/internal/load"
	"github.com/scoates/vagranttop/internal/models"
)

func testPoller(t *testing.T, machines map[string]models.VMRecord, running models.RunningInstanceMap, refreshErr error) *Poller {
	t.Helper()
	resolver := correlate.NewResolver(func(context.Context) (map[string]models.VMRecord, models.RunningInstanceMap, error) {
		if refreshErr != nil {
			return nil, nil, refreshErr
		}
		return machines, running, nil
	})
	if err := resolver.Prime(context.Background()); err != nil && refreshErr == nil {
		t.Fatalf("Prime: %v", err)
	}
	// ssh mode off: every correlated load renders as the placeholder
	return New(nil, resolver, load.NewFetcher(false, t.TempDir(), "vagrant"))
}

func TestCorrelateEntriesResolved(t *testing.T) {
	p := testPoller(t,
		map[string]models.VMRecord{"vbox-1": {
			ProviderInstanceID: "vbox-1",
			Name:               "vm1",
			DirectoryBaseName:  "box1",
			IndexUUID:          "uuid-1",
		}},
		models.RunningInstanceMap{"box1_vm1": "vbox-1"},
		nil)

	entries := []models.ProcessEntry{{
		PID:         101,
		CommandLine: []string{"VBoxHeadless", "--comment", "box1_vm1", "--startvm", "vbox-1"},
	}}
	p.resolver.BeginCycle()
	if err := p.correlateEntries(context.Background(), entries); err != nil {
		t.Fatalf("correlateEntries: %v", err)
	}

	e := entries[0]
	if e.VMID != "vbox-1" || e.VMDirectory != "box1" || e.VMName != "vm1" {
		t.Fatalf("enrichment wrong: %+v", e)
	}
	if e.VMLoad != load.Placeholder {
		t.Fatalf("VMLoad = %q with ssh mode off, want %q", e.VMLoad, load.Placeholder)
	}
}

func TestCorrelateEntriesNoComment(t *testing.T) {
	p := testPoller(t, nil, models.RunningInstanceMap{}, nil)

	entries := []models.ProcessEntry{{
		PID:         102,
		CommandLine: []string{"VBoxHeadless", "--startvm", "orphan"},
	}}
	p.resolver.BeginCycle()
	if err := p.correlateEntries(context.Background(), entries); err != nil {
		t.Fatalf("correlateEntries: %v", err)
	}

	e := entries[0]
	if e.VMID != "" || e.VMDirectory != "" || e.VMName != "" || e.VMLoad != "" {
		t.Fatalf("uncorrelated entry should carry empty fields: %+v", e)
	}
}

func TestCorrelateEntriesUnknownCommentKeepsComment(t *testing.T) {
	p := testPoller(t, nil, models.RunningInstanceMap{}, nil)

	entries := []models.ProcessEntry{{
		PID:         103,
		CommandLine: []string{"VBoxHeadless", "--comment", "mystery"},
	}}
	p.resolver.BeginCycle()
	if err := p.correlateEntries(context.Background(), entries); err != nil {
		t.Fatalf("correlateEntries: %v", err)
	}
	if entries[0].VMName != "mystery" || entries[0].VMID != "" {
		t.Fatalf("miss should keep the comment as the name: %+v", entries[0])
	}
}

func TestCorrelateEntriesRefreshFailureFatal(t *testing.T) {
	boom := errors.New("inventory unavailable")
	p := testPoller(t, nil, nil, boom)

	entries := []models.ProcessEntry{{
		PID:         104,
		CommandLine: []string{"VBoxHeadless", "--comment", "anything"},
	}}
	p.resolver.BeginCycle()
	if err := p.correlateEntries(context.Background(), entries); !errors.Is(err, boom) {
		t.Fatalf("expected refresh failure to propagate, got %v", err)
	}
}
