// Package event declares the messages exchanged between modules over the
// broker, with their destination and consumer channel names.
package event

const TaskAssignedDestination string = "task_assigned"
const TaskAssignedConsumerNotification string = "task_assigned_notification"

// TaskAssignedMessage announces that a task was assigned to a student.
type TaskAssignedMessage struct {
	TaskID        int64  `json:"task_id"`
	Title         string `json:"title"`
	DueDate       string `json:"due_date"`
	AssignedToID  int64  `json:"assigned_to_id"`
	AssignedEmail string `json:"assigned_email"`
	AssignedName  string `json:"assigned_name"`
	CreatedByName string `json:"created_by_name"`
}
