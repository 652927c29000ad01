package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/complaints/pkg/types"
)

// timestampLayout is the fixed-width UTC layout stored in complaint_history.
const timestampLayout = "2006-01-02 15:04:05.000000"

// Compile-time interface check: tables must implement Tables.
var _ types.Tables = (*tables)(nil)

// querier is the subset of *sql.DB and *sql.Tx used by the statements.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// tables implements types.Tables over a single transaction.
type tables struct {
	q querier
}

// InsertComplaint inserts a complaint and lets the schema supply the default
// status. The id comes from AUTOINCREMENT, so it is never reused.
func (t *tables) InsertComplaint(ctx context.Context, description string) (int64, error) {
	res, err := t.q.ExecContext(ctx,
		"INSERT INTO complaints (description) VALUES (?)", description)
	if err != nil {
		return 0, &types.StorageError{Op: "insert complaint", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &types.StorageError{Op: "read complaint id", Err: err}
	}
	return id, nil
}

// InsertHistory appends a history row for complaintID.
func (t *tables) InsertHistory(ctx context.Context, complaintID int64, at time.Time, action string) (int64, error) {
	res, err := t.q.ExecContext(ctx,
		"INSERT INTO complaint_history (complaint_id, timestamp, action) VALUES (?, ?, ?)",
		complaintID, at.UTC().Format(timestampLayout), action)
	if err != nil {
		return 0, &types.StorageError{Op: "insert history", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &types.StorageError{Op: "read history id", Err: err}
	}
	return id, nil
}

// GetComplaint returns the complaint with the given id, or ErrNotFound.
func (t *tables) GetComplaint(ctx context.Context, id int64) (*types.Complaint, error) {
	row := t.q.QueryRowContext(ctx,
		"SELECT complaint_id, description, department, status FROM complaints WHERE complaint_id = ?", id)
	c, err := scanComplaint(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, &types.StorageError{Op: fmt.Sprintf("get complaint %d", id), Err: err}
	}
	return c, nil
}

// ListComplaints returns all complaints ordered by id.
func (t *tables) ListComplaints(ctx context.Context) ([]types.Complaint, error) {
	rows, err := t.q.QueryContext(ctx,
		"SELECT complaint_id, description, department, status FROM complaints ORDER BY complaint_id ASC")
	if err != nil {
		return nil, &types.StorageError{Op: "list complaints", Err: err}
	}
	defer rows.Close()

	complaints := []types.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, &types.StorageError{Op: "scan complaint", Err: err}
		}
		complaints = append(complaints, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.StorageError{Op: "list complaints", Err: err}
	}
	return complaints, nil
}

// ListHistory returns the history of complaintID in insertion order.
func (t *tables) ListHistory(ctx context.Context, complaintID int64) ([]types.HistoryEntry, error) {
	rows, err := t.q.QueryContext(ctx,
		"SELECT history_id, complaint_id, timestamp, action FROM complaint_history WHERE complaint_id = ? ORDER BY history_id ASC",
		complaintID)
	if err != nil {
		return nil, &types.StorageError{Op: "list history", Err: err}
	}
	defer rows.Close()

	history := []types.HistoryEntry{}
	for rows.Next() {
		var (
			h      types.HistoryEntry
			ts     sql.NullString
			action sql.NullString
		)
		if err := rows.Scan(&h.HistoryID, &h.ComplaintID, &ts, &action); err != nil {
			return nil, &types.StorageError{Op: "scan history", Err: err}
		}
		if ts.Valid {
			parsed, err := time.ParseInLocation(timestampLayout, ts.String, time.UTC)
			if err != nil {
				return nil, &types.StorageError{Op: fmt.Sprintf("parse history %d timestamp", h.HistoryID), Err: err}
			}
			h.Timestamp = parsed
		}
		h.Action = action.String
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.StorageError{Op: "list history", Err: err}
	}
	return history, nil
}

// UpdateComplaintField sets status or department on one complaint.
func (t *tables) UpdateComplaintField(ctx context.Context, id int64, field, value string) error {
	var stmt string
	switch field {
	case types.FieldStatus:
		stmt = "UPDATE complaints SET status = ? WHERE complaint_id = ?"
	case types.FieldDepartment:
		stmt = "UPDATE complaints SET department = ? WHERE complaint_id = ?"
	default:
		return fmt.Errorf("%w: %q", types.ErrInvalidField, field)
	}

	res, err := t.q.ExecContext(ctx, stmt, value, id)
	if err != nil {
		return &types.StorageError{Op: "update complaint " + field, Err: err}
	}
	return requireAffected(res, "update complaint "+field)
}

// DeleteHistory removes every history row of complaintID.
func (t *tables) DeleteHistory(ctx context.Context, complaintID int64) (int64, error) {
	res, err := t.q.ExecContext(ctx,
		"DELETE FROM complaint_history WHERE complaint_id = ?", complaintID)
	if err != nil {
		return 0, &types.StorageError{Op: "delete history", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &types.StorageError{Op: "delete history", Err: err}
	}
	return n, nil
}

// DeleteComplaint removes the complaint row, or returns ErrNotFound.
func (t *tables) DeleteComplaint(ctx context.Context, id int64) error {
	res, err := t.q.ExecContext(ctx,
		"DELETE FROM complaints WHERE complaint_id = ?", id)
	if err != nil {
		return &types.StorageError{Op: "delete complaint", Err: err}
	}
	return requireAffected(res, "delete complaint")
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanComplaint(s rowScanner) (*types.Complaint, error) {
	var (
		c          types.Complaint
		department sql.NullString
		status     sql.NullString
	)
	if err := s.Scan(&c.ComplaintID, &c.Description, &department, &status); err != nil {
		return nil, err
	}
	c.Department = department.String
	c.Status = status.String
	return &c, nil
}

// requireAffected maps a statement that touched no rows to ErrNotFound.
func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return &types.StorageError{Op: op, Err: err}
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}
