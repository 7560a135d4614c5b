package events

import "time"

const (
	EmployeeLifecycleTopic   = "workforce.employee.lifecycle.v1"
	DepartmentLifecycleTopic = "workforce.department.lifecycle.v1"
	ProjectMembershipTopic   = "workforce.project.membership.v1"
)

const (
	EmployeeCreated        = "employee_created"
	EmployeeDeleted        = "employee_deleted"
	DepartmentDeleted      = "department_deleted"
	ProjectMembersReplaced = "project_members_replaced"
)

// Topics lists every topic the audit consumer subscribes to.
func Topics() []string {
	return []string{
		EmployeeLifecycleTopic,
		DepartmentLifecycleTopic,
		ProjectMembershipTopic,
	}
}

// Envelope holds the fields every event payload shares.
type Envelope struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
