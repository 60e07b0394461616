package requirements

import "time"

// Status indicates the outcome of a single requirement check
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Item is one requirement check result with an optional remediation hint
type Item struct {
	ID      string
	Name    string
	Status  Status
	Message string
	Hint    string
}

// Report aggregates the requirement checks of one run.
// Python and PythonVersion are set once the interpreter resolved.
type Report struct {
	GeneratedAt   time.Time
	Python        string
	PythonVersion string
	Items         []Item
}

// HasFailures reports whether any fatal check failed
func (r Report) HasFailures() bool {
	return len(r.Failures()) > 0
}

// Failures returns the fatal items in check order
func (r Report) Failures() []Item {
	var failed []Item
	for _, item := range r.Items {
		if item.Status == StatusFail {
			failed = append(failed, item)
		}
	}
	return failed
}

// Item returns the check with the given ID
func (r Report) Item(id string) (Item, bool) {
	for _, item := range r.Items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}
