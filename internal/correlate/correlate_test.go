package correlate

import (
	"context"
	"errors"
	"testing"

	"github.com/scoates/vagranttop/internal/models"
)

func TestComment(t *testing.T) {
	tests := []struct {
		name    string
		cmdline []string
		want    string
		found   bool
	}{
		{"typical", []string{"VBoxHeadless", "--comment", "box1_vm1", "--startvm", "x"}, "box1_vm1", true},
		{"absent", []string{"VBoxHeadless", "--startvm", "x"}, "", false},
		{"trailing flag", []string{"VBoxHeadless", "--comment"}, "", false},
		{"empty cmdline", nil, "", false},
		{"first pair wins", []string{"--comment", "a", "--comment", "b"}, "a", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := Comment(tt.cmdline)
			if got != tt.want || found != tt.found {
				t.Fatalf("Comment(%v) = %q,%v; want %q,%v", tt.cmdline, got, found, tt.want, tt.found)
			}
		})
	}
}

type fakeInventory struct {
	machines map[string]models.VMRecord
	running  models.RunningInstanceMap
	calls    int
	err      error
}

func (f *fakeInventory) refresh(context.Context) (map[string]models.VMRecord, models.RunningInstanceMap, error) {
	f.calls++
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.machines, f.running, nil
}

func primedResolver(t *testing.T, inv *fakeInventory) *Resolver {
	t.Helper()
	r := NewResolver(inv.refresh)
	if err := r.Prime(context.Background()); err != nil {
		t.Fatalf("Prime: %v", err)
	}
	return r
}

func TestResolveHit(t *testing.T) {
	inv := &fakeInventory{
		machines: map[string]models.VMRecord{"vbox-1": {ProviderInstanceID: "vbox-1", Name: "vm1", DirectoryBaseName: "box1"}},
		running:  models.RunningInstanceMap{"box1_vm1": "vbox-1"},
	}
	r := primedResolver(t, inv)
	r.BeginCycle()

	rec, ok, err := r.Resolve(context.Background(), "box1_vm1")
	if err != nil || !ok {
		t.Fatalf("Resolve = %v, %v", ok, err)
	}
	if rec.Name != "vm1" {
		t.Errorf("resolved name = %q", rec.Name)
	}
	if inv.calls != 1 {
		t.Errorf("hit should not refresh; calls = %d", inv.calls)
	}
}

func TestResolveIdempotentWithinCycle(t *testing.T) {
	inv := &fakeInventory{
		machines: map[string]models.VMRecord{"vbox-1": {ProviderInstanceID: "vbox-1", Name: "vm1"}},
		running:  models.RunningInstanceMap{"c": "vbox-1"},
	}
	r := primedResolver(t, inv)
	r.BeginCycle()

	first, ok, err := r.Resolve(context.Background(), "c")
	if err != nil || !ok {
		t.Fatalf("first Resolve = %v, %v", ok, err)
	}
	second, ok, err := r.Resolve(context.Background(), "c")
	if err != nil || !ok {
		t.Fatalf("second Resolve = %v, %v", ok, err)
	}
	if first != second {
		t.Fatalf("repeated lookups differ: %+v vs %+v", first, second)
	}
}

func TestBoundedRefreshPerCycle(t *testing.T) {
	inv := &fakeInventory{running: models.RunningInstanceMap{}}
	r := primedResolver(t, inv)

	r.BeginCycle()
	for _, comment := range []string{"miss-a", "miss-b", "miss-c"} {
		if _, ok, err := r.Resolve(context.Background(), comment); ok || err != nil {
			t.Fatalf("Resolve(%q) = %v, %v", comment, ok, err)
		}
	}
	// one call from Prime plus exactly one self-healing refresh
	if inv.calls != 2 {
		t.Fatalf("expected 1 refresh this cycle, observed %d total calls", inv.calls)
	}

	r.BeginCycle()
	if _, _, err := r.Resolve(context.Background(), "miss-d"); err != nil {
		t.Fatal(err)
	}
	if inv.calls != 3 {
		t.Fatalf("new cycle should re-arm the refresh; calls = %d", inv.calls)
	}
}

func TestRefreshPicksUpNewVM(t *testing.T) {
	inv := &fakeInventory{running: models.RunningInstanceMap{}}
	r := primedResolver(t, inv)

	// the VM appears after priming, as when it was started moments ago
	inv.machines = map[string]models.VMRecord{"vbox-9": {ProviderInstanceID: "vbox-9", Name: "fresh"}}
	inv.running = models.RunningInstanceMap{"fresh_comment": "vbox-9"}

	r.BeginCycle()
	rec, ok, err := r.Resolve(context.Background(), "fresh_comment")
	if err != nil || !ok {
		t.Fatalf("Resolve after refresh = %v, %v", ok, err)
	}
	if rec.Name != "fresh" {
		t.Errorf("resolved name = %q", rec.Name)
	}
}

func TestRefreshErrorPropagates(t *testing.T) {
	boom := errors.New("inventory unavailable")
	inv := &fakeInventory{running: models.RunningInstanceMap{}}
	r := primedResolver(t, inv)

	inv.err = boom
	r.BeginCycle()
	if _, _, err := r.Resolve(context.Background(), "miss"); !errors.Is(err, boom) {
		t.Fatalf("expected refresh error, got %v", err)
	}
}
