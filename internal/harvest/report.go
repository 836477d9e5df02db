// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// WriteReport persists a run summary as YAML under stateDir/reports,
// named by the run's start time. The report is the durable audit trail
// for a run; the operator log on stdout is transient.
func WriteReport(stateDir string, summary RunSummary) (string, error) {
	dir := filepath.Join(stateDir, "reports")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report dir: %w", err)
	}

	path := filepath.Join(dir, summary.StartedAt.Format("20060102T150405Z")+".yaml")

	data, err := yaml.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".report-*.tmp")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return path, nil
}
