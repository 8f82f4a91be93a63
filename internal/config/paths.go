package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Well-known artifact file names. Keeping them in one place makes the
// output layout reproducible across the CLIs.
const (
	FeatureTableCSVName  = "loan_features.csv"
	FeatureTableGobName  = "loan_features.gob"
	FeatureTableXLSXName = "loan_features.xlsx"
	MonthlyTableCSVName  = "loan_monthly.csv"
	MonthlyTableGobName  = "loan_monthly.gob"
)

// Paths holds the resolved absolute directory layout for a run.
type Paths struct {
	DataDir string
	OutDir  string
	LogsDir string
}

// NewPaths resolves the configured directories against the current
// working directory.
func NewPaths(cfg PathsConfig) (*Paths, error) {
	dataDir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data dir: %w", err)
	}
	outDir, err := filepath.Abs(cfg.OutDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve out dir: %w", err)
	}
	logsDir, err := filepath.Abs(cfg.LogsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve logs dir: %w", err)
	}
	return &Paths{DataDir: dataDir, OutDir: outDir, LogsDir: logsDir}, nil
}

// EnsureDirectories creates the output and log directories. The data
// directory is intentionally not created: a missing extract is an
// input error, not something to paper over.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.OutDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetDataPath returns the path of a raw extract file.
func (p *Paths) GetDataPath(name string) string {
	return filepath.Join(p.DataDir, name)
}

// GetOutputPath returns the path of a generated artifact.
func (p *Paths) GetOutputPath(name string) string {
	return filepath.Join(p.OutDir, name)
}

// GetLogPath returns the path of a log file.
func (p *Paths) GetLogPath(name string) string {
	return filepath.Join(p.LogsDir, name)
}
