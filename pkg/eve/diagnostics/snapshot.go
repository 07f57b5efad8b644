package diagnostics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"gomori.dev/x/judge/pkg/eve/match"
	"gomori.dev/x/judge/pkg/eve/tournament"
)

// Snapshotter keeps a YAML snapshot of the latest summary in a file.
type Snapshotter struct {
	match.Nop

	Path string
}

func (snapshotter Snapshotter) Report(summary tournament.Summary) {
	if err := snapshotter.write(summary); err != nil {
		logrus.Errorf("Snapshot %s: %v", snapshotter.Path, err)
	}
}

func (snapshotter Snapshotter) write(summary tournament.Summary) error {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return err
	}

	// Replace the old snapshot atomically.
	temp := snapshotter.Path + ".tmp"
	if err := os.WriteFile(temp, data, 0644); err != nil {
		return err
	}

	return os.Rename(temp, snapshotter.Path)
}

// ReadSnapshot reads a snapshot written by a Snapshotter.
func ReadSnapshot(path string) (tournament.Summary, error) {
	var summary tournament.Summary

	data, err := os.ReadFile(path)
	if err != nil {
		return summary, err
	}

	if err := yaml.Unmarshal(data, &summary); err != nil {
		return summary, fmt.Errorf("read snapshot %s: %w", filepath.Base(path), err)
	}

	return summary, nil
}
