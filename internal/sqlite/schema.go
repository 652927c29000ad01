// Package sqlite implements the SQLite storage backend for the complaints tracker.
package sqlite

// Schema DDL. Every statement is guarded with IF NOT EXISTS so Init can run
// against an existing database without touching its data.
const (
	createComplaints = `CREATE TABLE IF NOT EXISTS complaints (
    complaint_id INTEGER PRIMARY KEY AUTOINCREMENT,
    description TEXT NOT NULL,
    department TEXT,
    status TEXT DEFAULT 'Pending'
);`

	createComplaintHistory = `CREATE TABLE IF NOT EXISTS complaint_history (
    history_id INTEGER PRIMARY KEY AUTOINCREMENT,
    complaint_id INTEGER,
    timestamp TEXT,
    action TEXT,
    FOREIGN KEY (complaint_id) REFERENCES complaints(complaint_id)
);`
)

// Index DDL for common queries.
const (
	idxHistoryComplaint = `CREATE INDEX IF NOT EXISTS idx_complaint_history_complaint ON complaint_history(complaint_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createComplaints,
	createComplaintHistory,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxHistoryComplaint,
}
