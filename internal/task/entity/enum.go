package entity

// Status is the lifecycle of a task as the student works it.
type Status int16

const (
	StatusUnknown Status = iota
	StatusPending
	StatusInProgress
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

func (s Status) IsUnknown() bool {
	return s != StatusPending && s != StatusInProgress && s != StatusCompleted
}

func StatusFromString(v string) Status {
	switch v {
	case "Pending":
		return StatusPending
	case "In Progress":
		return StatusInProgress
	case "Completed":
		return StatusCompleted
	default:
		return StatusUnknown
	}
}

// ReportKind selects the report layout.
type ReportKind string

const (
	ReportSummary  ReportKind = "summary"
	ReportDetailed ReportKind = "detailed"
)

// ReportRange selects how far back the report reaches.
type ReportRange string

const (
	RangeWeek    ReportRange = "week"
	RangeMonth   ReportRange = "month"
	RangeQuarter ReportRange = "quarter"
	RangeYear    ReportRange = "year"
)
