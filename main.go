package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/scoates/vagranttop/internal/collector"
	"github.com/scoates/vagranttop/internal/config"
	"github.com/scoates/vagranttop/internal/correlate"
	"github.com/scoates/vagranttop/internal/inventory"
	"github.com/scoates/vagranttop/internal/load"
	"github.com/scoates/vagranttop/internal/poll"
	"github.com/scoates/vagranttop/internal/ui"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.config/vagranttop/config.yaml)")
	interval := flag.Duration("interval", 0, "poll interval, e.g. 1s (overrides config)")
	ssh := flag.Bool("ssh", false, "fetch per-VM load averages over vagrant ssh")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vagranttop: %v\n", err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "interval":
			cfg.Interval = config.Duration(*interval)
		case "ssh":
			cfg.SSH = *ssh
		}
	})

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "vagranttop: stdout is not a terminal")
		os.Exit(1)
	}

	reader := inventory.NewReader(cfg.VagrantBin, cfg.VBoxManageBin)
	resolver := correlate.NewResolver(reader.Refresh)
	if err := resolver.Prime(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "vagranttop: %v\n", err)
		os.Exit(1)
	}

	poller := poll.New(
		collector.New(cfg.WorkerProcess),
		resolver,
		load.NewFetcher(cfg.SSH, cfg.ScratchDir, cfg.VagrantBin),
	)

	p := tea.NewProgram(ui.NewModel(poller, time.Duration(cfg.Interval)), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vagranttop: %v\n", err)
		os.Exit(1)
	}
	if m, ok := final.(ui.Model); ok && m.Err() != nil {
		fmt.Fprintf(os.Stderr, "vagranttop: %v\n", m.Err())
		os.Exit(1)
	}
}
