package events

import "time"

type ProjectMembersReplacedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id,omitempty"`
	ProjectID   uint      `json:"project_id"`
	EmployeeIDs []uint    `json:"employee_ids"`
	Added       []uint    `json:"added"`
	Removed     []uint    `json:"removed"`
	OccurredAt  time.Time `json:"occurred_at"`
}
