package result

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// CreateBatchDir creates runs/<UTC stamp> under baseDir and points the
// latest symlink at it.
func CreateBatchDir(baseDir string) (*Batch, error) {
	runsDir := filepath.Join(baseDir, "runs")
	stamp := time.Now().UTC().Format("2006-01-02T15-04-05")
	batchDir := filepath.Join(runsDir, stamp)
	batchDir, err := filepath.Abs(batchDir)
	if err != nil {
		return nil, fmt.Errorf("resolving batch dir: %w", err)
	}
	if err := os.MkdirAll(batchDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating batch dir: %w", err)
	}
	latest := filepath.Join(baseDir, "latest")
	os.Remove(latest)
	if err := os.Symlink(batchDir, latest); err != nil {
		return nil, fmt.Errorf("creating latest symlink: %w", err)
	}
	return &Batch{ID: uuid.New(), Dir: batchDir}, nil
}

func RunDir(batchDir, scenario string, seed int) string {
	return filepath.Join(batchDir, "scenarios", scenario, fmt.Sprintf("seed-%d", seed))
}

func WriteRunMeta(runDir string, meta *RunMeta) error {
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return fmt.Errorf("creating run dir: %w", err)
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling meta: %w", err)
	}
	return os.WriteFile(filepath.Join(runDir, "meta.json"), data, 0o644)
}

func ReadRunMeta(path string) (*RunMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading meta: %w", err)
	}
	var meta RunMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing meta: %w", err)
	}
	return &meta, nil
}

// LoadBatch reads every meta.json under batchDir, ordered by scenario and seed.
func LoadBatch(batchDir string) ([]*RunMeta, error) {
	paths, err := filepath.Glob(filepath.Join(batchDir, "scenarios", "*", "seed-*", "meta.json"))
	if err != nil {
		return nil, err
	}
	metas := make([]*RunMeta, 0, len(paths))
	for _, p := range paths {
		m, err := ReadRunMeta(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		metas = append(metas, m)
	}
	sort.Slice(metas, func(i, j int) bool {
		if metas[i].Scenario != metas[j].Scenario {
			return metas[i].Scenario < metas[j].Scenario
		}
		return metas[i].Seed < metas[j].Seed
	})
	return metas, nil
}
