package entity

// Person is the slice of a user account the task module needs: enough to
// check the assignee's role and address the assignment email.
type Person struct {
	ID       int64
	Email    string
	FullName string
	Role     string
}

func (p Person) IsStudent() bool { return p.Role == "Student" }
