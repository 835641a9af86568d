package entity

import "strings"

// Kind names the event a notification row was born from.
type Kind string

const (
	KindUnknown      Kind = ""
	KindTaskAssigned Kind = "task_assigned"
	KindUserWelcome  Kind = "user_welcome"
)

func KindFromString(raw string) Kind {
	switch strings.TrimSpace(raw) {
	case "task_assigned":
		return KindTaskAssigned
	case "user_welcome":
		return KindUserWelcome
	default:
		return KindUnknown
	}
}

func (k Kind) String() string {
	return string(k)
}
