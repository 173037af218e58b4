package result

import "github.com/google/uuid"

// RunMeta records one simulator run of a scenario.
type RunMeta struct {
	BatchID      uuid.UUID `json:"batch_id"`
	Scenario     string    `json:"scenario"`
	Group        string    `json:"group"`
	Seed         int       `json:"seed"`
	Command      []string  `json:"command"`
	DurationS    int       `json:"duration_s"`
	ExitCode     int       `json:"exit_code"`
	ExitReason   string    `json:"exit_reason"`
	TripInfoFile string    `json:"tripinfo_file"`
	VehRouteFile string    `json:"vehroute_file"`
	FCDFile      string    `json:"fcd_file,omitempty"`
}

// Batch is one simulate invocation.
type Batch struct {
	ID  uuid.UUID
	Dir string
}
