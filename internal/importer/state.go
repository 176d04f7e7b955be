package importer

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// LoadLastRun reads the timestamp of the previous successful import. A
// missing file means no previous run and returns the zero time.
func LoadLastRun(path string) (time.Time, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("reading import state: %w", err)
	}
	stamp, err := time.Parse(time.RFC3339, strings.TrimSpace(string(data)))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing import state: %w", err)
	}
	return stamp, nil
}

// SaveLastRun records the end of a successful import window so the next
// run can resume from it.
func SaveLastRun(path string, at time.Time) error {
	data := at.Format(time.RFC3339) + "\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("writing import state: %w", err)
	}
	return nil
}
