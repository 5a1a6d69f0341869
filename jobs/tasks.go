package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTableauWarmup pre-builds administrative account tables so the
	// first consultation of an exercice is served from cache.
	TaskTableauWarmup = "tableau:warmup"
)

// TableauWarmupPayload scopes a warmup run. A nil RegionID warms every
// commune.
type TableauWarmupPayload struct {
	ExerciceAnnee int    `json:"exercice_annee"`
	RegionID      *int64 `json:"region_id,omitempty"`
}

// NewTableauWarmupTask constructs an Asynq task.
func NewTableauWarmupTask(payload TableauWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTableauWarmup, data), nil
}
