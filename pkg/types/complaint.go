package types

import (
	"fmt"
	"time"
)

// StatusPending is the status every complaint starts with.
const StatusPending = "Pending"

// ActionRegistered is the history action recorded when a complaint is created.
const ActionRegistered = "Complaint Registered"

// Complaint represents one reported issue.
type Complaint struct {
	ComplaintID int64  // Assigned by the store; never reused.
	Description string // Required, set at creation, immutable.
	Department  string // Optional; empty when unassigned.
	Status      string // Free text, StatusPending at creation.
}

// HistoryEntry records one action taken on a complaint. Entries are
// append-only and only disappear when their complaint is deleted.
type HistoryEntry struct {
	HistoryID   int64
	ComplaintID int64
	Timestamp   time.Time
	Action      string
}

// ComplaintDetail is a complaint together with its history, oldest first.
type ComplaintDetail struct {
	Complaint
	History []HistoryEntry
}

// ComplaintUpdate carries the optional fields of an update. A nil field is
// left untouched.
type ComplaintUpdate struct {
	Status     *string
	Department *string
}

// Empty reports whether the update carries no fields.
func (u ComplaintUpdate) Empty() bool {
	return u.Status == nil && u.Department == nil
}

// StatusAction returns the history action for a status change.
func StatusAction(status string) string {
	return fmt.Sprintf("Status updated to %s", status)
}

// DepartmentAction returns the history action for a department change.
func DepartmentAction(department string) string {
	return fmt.Sprintf("Department updated to %s", department)
}
