// Package driver orchestrates a compile run: it parses a grammar source,
// drives the core's initialization pipeline, hands the result to emit, and
// renders diagnostics for anything that goes wrong along the way. It is the
// layer cmd/astir calls into; it owns no compiler semantics of its own.
package driver

import (
	"os"

	"github.com/BurntSushi/toml"
)

// MachineOverride holds per-machine config overrides keyed by machine name
// in Config.Machines.
type MachineOverride struct {
	K *int `toml:"k"`
}

// Config is the optional project file (astir.toml): defaults the CLI flags
// fall back to when unset.
type Config struct {
	OutputDir   string                     `toml:"output_dir"`
	PackageName string                     `toml:"package_name"`
	DefaultK    int                        `toml:"default_k"`
	Machines    map[string]MachineOverride `toml:"machines"`
}

// DefaultConfig returns the config the CLI falls back to when no project
// file is present: output directory "." and package name "parser". DefaultK is left at 0 ("no override") rather
// than some positive bound: the grammar's own `LL(k) parser` header always
// states its lookahead explicitly (spec's grammar syntax requires it), so
// absent a project file there is nothing to default to.
func DefaultConfig() *Config {
	return &Config{OutputDir: ".", PackageName: "parser"}
}

// LoadConfig reads and decodes a project file at path. A missing file is not
// an error; it returns DefaultConfig unchanged.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// KFor resolves a configured lookahead override for a named LL(k) machine,
// or 0 if none applies. A per-machine override under [machines.NAME] wins
// over the project-wide default_k; 0 means the machine's own source-declared
// K should be left alone.
func (c *Config) KFor(machineName string) int {
	if c == nil {
		return 0
	}
	if ov, ok := c.Machines[machineName]; ok && ov.K != nil {
		return *ov.K
	}
	return c.DefaultK
}
