package store

// Run statuses.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// Mutation statuses.
const (
	MutationApplied = "applied"
	MutationFailed  = "failed"
)

// Run is one engine Apply call.
type Run struct {
	ID          string `json:"id"`
	Seq         int64  `json:"seq"`
	InitialHash string `json:"initial_hash"`
	FinalHash   string `json:"final_hash,omitempty"`
	Status      string `json:"status"`
	ErrorCode   string `json:"error_code,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Mutation is one journaled op of a run.
//
// Fingerprint is the design fingerprint after the op ran. For a failed op
// it covers whatever partial change the op made before it stopped.
type Mutation struct {
	RunID       string         `json:"run_id"`
	Seq         int64          `json:"seq"`
	Kind        string         `json:"kind"`
	Args        map[string]any `json:"args"`
	OpHash      string         `json:"op_hash"`
	Fingerprint string         `json:"fingerprint"`
	Status      string         `json:"status"`
	Error       string         `json:"error,omitempty"`
}
