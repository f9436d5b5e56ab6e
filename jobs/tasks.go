package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSeedPopulate is the task type for the synthetic population run.
	TaskSeedPopulate = "seed:populate"
)

// SeedPopulatePayload optionally overrides the configured population bounds.
// Zero values defer to the pipeline configuration.
type SeedPopulatePayload struct {
	Total     int `json:"total,omitempty"`
	BatchSize int `json:"batchSize,omitempty"`
}

// NewSeedPopulateTask constructs an Asynq task for the population run.
func NewSeedPopulateTask(payload SeedPopulatePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSeedPopulate, data), nil
}
