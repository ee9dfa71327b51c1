package load

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/scoates/vagranttop/internal/execx"
)

// Placeholder is shown whenever a load average is not fetched, either
// because remote fetching is disabled or because the fetch failed.
const Placeholder = "?"

// The fetch runs over vagrant ssh inside the poll cycle, so it gets a tight
// timeout and degrades instead of stalling the UI.
const fetchTimeout = 10 * time.Second

// Fetcher reads a VM's load average by running `cat /proc/loadavg` inside
// it. The remote-exec tool insists on a working directory holding an
// environment file, so a scratch directory with an empty Vagrantfile is
// created on first use.
type Fetcher struct {
	enabled    bool
	scratchDir string
	vagrantBin string
	run        execx.Runner

	bootstrapped bool
}

func NewFetcher(enabled bool, scratchDir, vagrantBin string) *Fetcher {
	return &Fetcher{
		enabled:    enabled,
		scratchDir: scratchDir,
		vagrantBin: vagrantBin,
		run:        execx.Output,
	}
}

// Fetch returns the first token of the VM's /proc/loadavg, or Placeholder
// when fetching is disabled or anything goes wrong. Never fatal.
func (f *Fetcher) Fetch(ctx context.Context, machineID string) string {
	if !f.enabled || machineID == "" {
		return Placeholder
	}
	if err := f.bootstrap(); err != nil {
		return Placeholder
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()
	out, err := f.run(ctx, f.scratchDir, f.vagrantBin, "ssh", machineID, "-c", "cat /proc/loadavg")
	if err != nil {
		return Placeholder
	}
	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return Placeholder
	}
	return fields[0]
}

// bootstrap creates the scratch directory and its empty Vagrantfile once.
// A file lock guards against another vagranttop racing the same setup.
func (f *Fetcher) bootstrap() error {
	if f.bootstrapped {
		return nil
	}

	lock := flock.New(f.scratchDir + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock scratch dir: %w", err)
	}
	defer lock.Unlock()

	if err := os.MkdirAll(f.scratchDir, 0o755); err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	vf, err := os.OpenFile(filepath.Join(f.scratchDir, "Vagrantfile"), os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create environment file: %w", err)
	}
	vf.Close()

	f.bootstrapped = true
	return nil
}
