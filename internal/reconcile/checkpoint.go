package reconcile

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Checkpoint captures partial session progress: where the crawl cursor
// is and how many ids the session has resolved so far. It exists for
// observability and resume, not as a transaction log; the write is not
// atomic and a crash mid-write can corrupt it.
type Checkpoint struct {
	Session    string    `yaml:"session"`
	Page       int       `yaml:"page"`
	Indexed    int       `yaml:"indexed"`
	Resolved   int       `yaml:"resolved"`
	WrittenAt  time.Time `yaml:"written_at"`
	StopReason string    `yaml:"stop_reason,omitempty"`
}

// WriteCheckpoint overwrites the checkpoint sidecar at path.
func WriteCheckpoint(path string, cp Checkpoint) error {
	cp.WrittenAt = time.Now().UTC()
	data, err := yaml.Marshal(&cp)
	if err != nil {
		return eris.Wrap(err, "checkpoint: marshal")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "checkpoint: write %s", path)
	}
	return nil
}

// ReadCheckpoint loads a checkpoint sidecar. A missing file returns ok
// false without an error, so callers can start fresh.
func ReadCheckpoint(path string) (Checkpoint, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Checkpoint{}, false, nil
		}
		return Checkpoint{}, false, eris.Wrapf(err, "checkpoint: read %s", path)
	}

	var cp Checkpoint
	if err := yaml.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, false, eris.Wrapf(err, "checkpoint: parse %s", path)
	}
	return cp, true, nil
}
