package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/scoates/vagranttop/internal/execx"
	"github.com/scoates/vagranttop/internal/models"
)

// ErrUnavailable marks a failed inventory refresh: a listing command exited
// non-zero, its output did not parse, or a machine's sentinel files are
// missing. Always fatal to the caller.
var ErrUnavailable = errors.New("inventory unavailable")

const (
	// A hung VBoxManage would otherwise wedge the whole UI; 30s is
	// generous for both CLIs.
	refreshTimeout = 30 * time.Second

	sentinelReadLimit = 1000
)

// Reader lists the orchestrator's machines and the hypervisor's running
// instances. It holds no cache; the caller decides when to refresh.
type Reader struct {
	vagrantBin string
	vboxBin    string
	run        execx.Runner
}

func NewReader(vagrantBin, vboxBin string) *Reader {
	return &Reader{vagrantBin: vagrantBin, vboxBin: vboxBin, run: execx.Output}
}

// Refresh re-fetches both listings and returns the machine set keyed by
// provider instance id alongside the comment -> instance id map.
func (r *Reader) Refresh(ctx context.Context) (map[string]models.VMRecord, models.RunningInstanceMap, error) {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	var (
		machines map[string]models.VMRecord
		running  models.RunningInstanceMap
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		machines, err = r.listMachines(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		running, err = r.listRunning(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return machines, running, nil
}

// listMachines runs `vagrant global-status` and resolves every listed
// machine through its sentinel files. A machine the orchestrator lists but
// whose identity files are unreadable fails the whole refresh.
func (r *Reader) listMachines(ctx context.Context) (map[string]models.VMRecord, error) {
	out, err := r.run(ctx, "", r.vagrantBin, "global-status")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	recs, err := parseGlobalStatus(out)
	if err != nil {
		return nil, err
	}

	machines := make(map[string]models.VMRecord, len(recs))
	for _, rec := range recs {
		sentinelDir := filepath.Join(rec.Directory, ".vagrant", "machines", rec.Name, rec.Provider)
		rec.IndexUUID, err = readSentinel(filepath.Join(sentinelDir, "index_uuid"))
		if err != nil {
			return nil, fmt.Errorf("%w: machine %s: %v", ErrUnavailable, rec.Name, err)
		}
		rec.ProviderInstanceID, err = readSentinel(filepath.Join(sentinelDir, "id"))
		if err != nil {
			return nil, fmt.Errorf("%w: machine %s: %v", ErrUnavailable, rec.Name, err)
		}
		machines[rec.ProviderInstanceID] = rec
	}
	return machines, nil
}

// parseGlobalStatus interprets the listing as whitespace-delimited columns:
// a header row naming the fields, a separator row, then one row per machine
// up to the first blank line.
func parseGlobalStatus(out []byte) ([]models.VMRecord, error) {
	lines := strings.Split(string(out), "\n")
	if len(lines) < 2 {
		return nil, fmt.Errorf("%w: vagrant global-status: truncated output", ErrUnavailable)
	}
	header := strings.Fields(lines[0])
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{"name", "provider", "directory"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: vagrant global-status: no %q column", ErrUnavailable, required)
		}
	}

	var recs []models.VMRecord
	for _, line := range lines[2:] {
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		parts := strings.Fields(line)
		if len(parts) < len(header) {
			return nil, fmt.Errorf("%w: vagrant global-status: row %q has %d fields, header has %d",
				ErrUnavailable, line, len(parts), len(header))
		}
		rec := models.VMRecord{
			Name:      parts[cols["name"]],
			Provider:  parts[cols["provider"]],
			Directory: parts[cols["directory"]],
		}
		rec.DirectoryBaseName = filepath.Base(rec.Directory)
		recs = append(recs, rec)
	}
	return recs, nil
}

// listRunning runs the hypervisor listing and parses each line as a quoted
// comment followed by a braced instance UUID.
func (r *Reader) listRunning(ctx context.Context) (models.RunningInstanceMap, error) {
	out, err := r.run(ctx, "", r.vboxBin, "list", "runningvms")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return parseRunningVMs(out)
}

func parseRunningVMs(out []byte) (models.RunningInstanceMap, error) {
	running := models.RunningInstanceMap{}
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// split at the braced token, not the first space: the quoted
		// comment itself may contain spaces
		idx := strings.LastIndex(line, " {")
		if idx < 0 {
			return nil, fmt.Errorf("%w: runningvms: malformed line %q", ErrUnavailable, line)
		}
		comment, braced := strings.TrimSpace(line[:idx]), line[idx+1:]
		id := strings.Trim(braced, "{}")
		if _, err := uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("%w: runningvms: bad instance id in %q", ErrUnavailable, line)
		}
		running[strings.Trim(comment, `"`)] = id
	}
	return running, nil
}

func readSentinel(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	b, err := io.ReadAll(io.LimitReader(f, sentinelReadLimit))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
