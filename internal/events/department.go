package events

import "time"

// DepartmentDeletedEvent lists the employees removed together with the department.
type DepartmentDeletedEvent struct {
	EventType          string    `json:"event_type"`
	RequestID          string    `json:"request_id,omitempty"`
	DepartmentID       uint      `json:"department_id"`
	RemovedEmployeeIDs []uint    `json:"removed_employee_ids"`
	OccurredAt         time.Time `json:"occurred_at"`
}
