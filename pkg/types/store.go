package types

import (
	"context"
	"errors"
	"time"
)

// Mutable complaint columns accepted by Tables.UpdateComplaintField.
const (
	FieldStatus     = "status"
	FieldDepartment = "department"
)

// Store is the persistence boundary used by the complaint service.
// Every call to WithTx is one unit of work: fn's writes are committed
// together before WithTx returns, or rolled back together when fn fails.
type Store interface {
	WithTx(ctx context.Context, fn func(Tables) error) error
}

// Tables exposes the primitive statements of the store, scoped to the
// transaction opened by Store.WithTx.
type Tables interface {
	// InsertComplaint stores a new complaint with the default status and no
	// department, and returns the id assigned by the storage engine.
	InsertComplaint(ctx context.Context, description string) (int64, error)

	// InsertHistory appends a history entry for complaintID.
	InsertHistory(ctx context.Context, complaintID int64, at time.Time, action string) (int64, error)

	// GetComplaint returns the complaint with the given id.
	// Returns ErrNotFound if no complaint exists with that id.
	GetComplaint(ctx context.Context, id int64) (*Complaint, error)

	// ListComplaints returns every complaint in ascending id order.
	ListComplaints(ctx context.Context) ([]Complaint, error)

	// ListHistory returns the history of complaintID, oldest first.
	ListHistory(ctx context.Context, complaintID int64) ([]HistoryEntry, error)

	// UpdateComplaintField sets one mutable column (FieldStatus or
	// FieldDepartment). Returns ErrInvalidField for any other field and
	// ErrNotFound if no complaint exists with that id.
	UpdateComplaintField(ctx context.Context, id int64, field, value string) error

	// DeleteHistory removes all history entries of complaintID and returns
	// how many were removed.
	DeleteHistory(ctx context.Context, complaintID int64) (int64, error)

	// DeleteComplaint removes the complaint row.
	// Returns ErrNotFound if no complaint exists with that id.
	DeleteComplaint(ctx context.Context, id int64) error
}

// Store lifecycle and statement errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrInvalidField    = errors.New("field is not updatable")
)
