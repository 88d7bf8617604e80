package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".cleo"

// Paths holds resolved filesystem paths for Cleo data.
type Paths struct {
	Base    string // ~/.cleo
	Config  string // ~/.cleo/config.yaml
	Logs    string // ~/.cleo/logs
	Data    string // ~/.cleo/data
	Uploads string // ~/.cleo/data/uploads
}

// ResolvePaths computes all standard paths from the home directory.
// If CLEO_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("CLEO_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	return Paths{
		Base:    base,
		Config:  filepath.Join(base, "config.yaml"),
		Logs:    filepath.Join(base, "logs"),
		Data:    filepath.Join(base, "data"),
		Uploads: filepath.Join(base, "data", "uploads"),
	}, nil
}

// EnsureDirs creates all standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	for _, d := range []string{p.Base, p.Logs, p.Data, p.Uploads} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}
