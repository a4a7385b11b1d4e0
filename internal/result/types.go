package result

import (
	"time"

	"github.com/signalnine/asmqc/internal/stats"
)

// Record is one tool run and the statistics it produced.
type Record struct {
	Tool      stats.Tool        `json:"tool"`
	RunID     string            `json:"run_id"`
	Inputs    map[string]string `json:"inputs"`
	Stats     stats.Stats       `json:"stats"`
	Started   time.Time         `json:"started"`
	DurationS float64           `json:"duration_s"`
}
