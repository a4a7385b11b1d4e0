package result

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/signalnine/asmqc/internal/stats"
)

const (
	filePrefix = "asmqc."
	fileSuffix = ".json"
)

// NewRecord starts a record for a run of tool beginning now.
func NewRecord(tool stats.Tool, inputs map[string]string) *Record {
	return &Record{
		Tool:    tool,
		RunID:   uuid.NewString(),
		Inputs:  inputs,
		Started: time.Now().UTC(),
	}
}

// Finish stores s and the elapsed time since the record was started.
func (r *Record) Finish(s stats.Stats) {
	r.Stats = s
	r.DurationS = time.Since(r.Started).Seconds()
}

// RecordPath is where a record for tool is kept inside dir.
func RecordPath(dir string, tool stats.Tool) string {
	return filepath.Join(dir, filePrefix+string(tool)+fileSuffix)
}

func WriteRecord(dir string, rec *Record) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating record dir: %w", err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling record: %w", err)
	}
	path := RecordPath(dir, rec.Tool)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing record: %w", err)
	}
	return path, nil
}

func ReadRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing record %s: %w", path, err)
	}
	if _, err := stats.ParseTool(string(rec.Tool)); err != nil {
		return nil, fmt.Errorf("parsing record %s: %w", path, err)
	}
	return &rec, nil
}

// CollectRecords walks dir and reads every record file under it, ordered by
// tool and start time. Unreadable records are skipped.
func CollectRecords(dir string) ([]*Record, error) {
	var records []*Record
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			return nil
		}
		rec, err := ReadRecord(path)
		if err != nil {
			return nil
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Tool != records[j].Tool {
			return records[i].Tool < records[j].Tool
		}
		return records[i].Started.Before(records[j].Started)
	})
	return records, nil
}
