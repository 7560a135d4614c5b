package events

import "time"

type EmployeeCreatedEvent struct {
	EventType    string    `json:"event_type"`
	RequestID    string    `json:"request_id,omitempty"`
	EmployeeID   uint      `json:"employee_id"`
	DepartmentID *uint     `json:"department_id,omitempty"`
	Email        string    `json:"email"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type EmployeeDeletedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	EmployeeID uint      `json:"employee_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
