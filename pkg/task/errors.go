package task

import (
	"fmt"
	"time"

	"github.com/vmware/govmomi/vim25/types"
)

// OperationFailure is returned when a remote task ends in the error state.
// Error returns the server's localized message unchanged.
type OperationFailure struct {
	Op    string
	Task  types.ManagedObjectReference
	Fault *types.LocalizedMethodFault
}

func (e *OperationFailure) Error() string {
	if e.Fault == nil {
		return fmt.Sprintf("%s task %s failed without error detail", e.Op, e.Task.Value)
	}
	if e.Fault.LocalizedMessage != "" {
		return e.Fault.LocalizedMessage
	}
	return fmt.Sprintf("%s task %s failed: %T", e.Op, e.Task.Value, e.Fault.Fault)
}

// TimeoutError is returned when a task does not reach a terminal state in
// time. The remote task keeps running.
type TimeoutError struct {
	Op    string
	Task  types.ManagedObjectReference
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s task %s did not complete within %s", e.Op, e.Task.Value, e.After)
}
