package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration decodes yaml values like "2s" or "500ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

type Config struct {
	// Interval between poll cycles; the first cycle always runs immediately.
	Interval Duration `yaml:"interval"`
	// SSH enables the per-VM load average fetch over vagrant ssh.
	SSH bool `yaml:"ssh"`
	// ScratchDir is the working directory for the remote-exec tool.
	ScratchDir string `yaml:"scratch_dir"`
	// WorkerProcess is the hypervisor's worker image name.
	WorkerProcess string `yaml:"worker_process"`
	VagrantBin    string `yaml:"vagrant_bin"`
	VBoxManageBin string `yaml:"vboxmanage_bin"`
}

func Default() *Config {
	return &Config{
		Interval:      Duration(time.Second),
		ScratchDir:    filepath.Join(os.TempDir(), "vagranttop"),
		WorkerProcess: "VBoxHeadless",
		VagrantBin:    "vagrant",
		VBoxManageBin: "VBoxManage",
	}
}

func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".config", "vagranttop", "config.yaml"), nil
}

// Load starts from defaults, layers the config file over them when it
// exists (a missing file is not an error), and finally applies the
// DO_SSH / VAGRANTTOP_SSH environment toggle.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			applyEnv(cfg)
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = Default().Interval
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	for _, name := range []string{"DO_SSH", "VAGRANTTOP_SSH"} {
		if truthy(os.Getenv(name)) {
			cfg.SSH = true
		}
	}
}

func truthy(v string) bool {
	return v != "" && v != "0" && !strings.EqualFold(v, "false")
}
