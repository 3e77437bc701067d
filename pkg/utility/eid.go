package utility

import (
	"sync"

	"github.com/google/uuid"
)

// ExecutionID tags log output of one process execution. It carries no
// simulation semantics; run results stay byte-identical across executions.
type ExecutionID = uuid.UUID

var (
	executionID     ExecutionID
	executionIDOnce sync.Once
)

// GetExecutionID returns the process execution identifier, generating it on
// first use.
func GetExecutionID() ExecutionID {
	executionIDOnce.Do(func() {
		executionID = uuid.Must(uuid.NewV7())
	})
	return executionID
}
