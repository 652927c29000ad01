package complaint

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/complaints/internal/sqlite"
	"github.com/mesh-intelligence/complaints/pkg/types"
)

// setupService returns a Service over a fresh SQLite backend, with a clock
// that advances one second per call.
func setupService(t *testing.T) (*Service, *sqlite.Backend) {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}))
	t.Cleanup(func() { b.Detach() })

	tick := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return NewService(b, WithClock(clock)), b
}

func strPtr(s string) *string { return &s }

func TestAddComplaint(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	seen := map[int64]bool{}
	for _, d := range []string{"Broken streetlight", "Pothole", "  Loud music after midnight  "} {
		id, err := svc.AddComplaint(ctx, d)
		require.NoError(t, err)
		assert.False(t, seen[id], "id %d returned twice", id)
		seen[id] = true

		got, err := svc.GetComplaint(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, types.StatusPending, got.Status)
		assert.Equal(t, d, got.Description, "description is stored as entered")
		assert.Empty(t, got.Department)
		require.Len(t, got.History, 1)
		assert.Equal(t, types.ActionRegistered, got.History[0].Action)
	}
}

func TestAddComplaint_RejectsEmptyDescription(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	for _, d := range []string{"", "   ", "\t\n"} {
		_, err := svc.AddComplaint(ctx, d)
		assert.True(t, types.IsValidation(err), "description %q: got %v", d, err)
	}

	list, err := svc.ListComplaints(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListComplaints(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	list, err := svc.ListComplaints(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	var ids []int64
	for _, d := range []string{"one", "two", "three", "four"} {
		id, err := svc.AddComplaint(ctx, d)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	_, err = svc.UpdateComplaint(ctx, ids[2], types.ComplaintUpdate{Status: strPtr("Resolved")})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteComplaint(ctx, ids[1]))

	list, err = svc.ListComplaints(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{ids[0], ids[2], ids[3]},
		[]int64{list[0].ComplaintID, list[1].ComplaintID, list[2].ComplaintID})
}

func TestGetComplaint_NotFound(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	id, err := svc.AddComplaint(ctx, "Existing")
	require.NoError(t, err)

	_, err = svc.GetComplaint(ctx, id+1)
	require.Error(t, err)
	assert.True(t, types.IsNotFound(err))
	var nf *types.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, id+1, nf.ComplaintID)

	list, err := svc.ListComplaints(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1, "lookup must not mutate state")
}

func TestGetComplaint_HistoryOrdered(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	id, err := svc.AddComplaint(ctx, "Leaking hydrant")
	require.NoError(t, err)

	for _, status := range []string{"Assigned", "In Progress", "Resolved"} {
		_, err := svc.UpdateComplaint(ctx, id, types.ComplaintUpdate{Status: strPtr(status)})
		require.NoError(t, err)
	}

	got, err := svc.GetComplaint(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.History, 4)
	wantActions := []string{
		types.ActionRegistered,
		"Status updated to Assigned",
		"Status updated to In Progress",
		"Status updated to Resolved",
	}
	for i, h := range got.History {
		assert.Equal(t, wantActions[i], h.Action)
		assert.Equal(t, id, h.ComplaintID)
		if i > 0 {
			assert.True(t, h.Timestamp.After(got.History[i-1].Timestamp))
		}
	}
}

func TestUpdateComplaint(t *testing.T) {
	tests := []struct {
		name        string
		initialDept string
		update      types.ComplaintUpdate
		wantStatus  string
		wantDept    string
		wantActions []string
		wantErr     func(error) bool
	}{
		{
			name:        "status only leaves department unchanged",
			initialDept: "Roads",
			update:      types.ComplaintUpdate{Status: strPtr("Resolved")},
			wantStatus:  "Resolved",
			wantDept:    "Roads",
			wantActions: []string{"Status updated to Resolved"},
		},
		{
			name:        "department only leaves status unchanged",
			update:      types.ComplaintUpdate{Department: strPtr("Public Works")},
			wantStatus:  types.StatusPending,
			wantDept:    "Public Works",
			wantActions: []string{"Department updated to Public Works"},
		},
		{
			name:       "both fields append one entry each, status first",
			update:     types.ComplaintUpdate{Status: strPtr("Assigned"), Department: strPtr("Sanitation")},
			wantStatus: "Assigned",
			wantDept:   "Sanitation",
			wantActions: []string{
				"Status updated to Assigned",
				"Department updated to Sanitation",
			},
		},
		{
			name:        "no fields writes nothing",
			initialDept: "Roads",
			update:      types.ComplaintUpdate{},
			wantStatus:  types.StatusPending,
			wantDept:    "Roads",
		},
		{
			name:        "blank status is rejected",
			initialDept: "Roads",
			update:      types.ComplaintUpdate{Status: strPtr("  "), Department: strPtr("Parks")},
			wantStatus:  types.StatusPending,
			wantDept:    "Roads",
			wantErr:     types.IsValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := setupService(t)
			ctx := context.Background()
			id, err := svc.AddComplaint(ctx, "Cracked pavement")
			require.NoError(t, err)
			if tt.initialDept != "" {
				_, err = svc.UpdateComplaint(ctx, id, types.ComplaintUpdate{Department: strPtr(tt.initialDept)})
				require.NoError(t, err)
			}

			before, err := svc.GetComplaint(ctx, id)
			require.NoError(t, err)

			updated, err := svc.UpdateComplaint(ctx, id, tt.update)
			after, getErr := svc.GetComplaint(ctx, id)
			require.NoError(t, getErr)

			if tt.wantErr != nil {
				assert.True(t, tt.wantErr(err), "unexpected error %v", err)
				assert.Len(t, after.History, len(before.History))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantStatus, updated.Status)
				assert.Equal(t, tt.wantDept, updated.Department)
				require.Len(t, after.History, len(before.History)+len(tt.wantActions))
				for i, action := range tt.wantActions {
					assert.Equal(t, action, after.History[len(before.History)+i].Action)
				}
			}
			assert.Equal(t, tt.wantStatus, after.Status)
			assert.Equal(t, tt.wantDept, after.Department)
			assert.Equal(t, "Cracked pavement", after.Description)
		})
	}
}

func TestUpdateComplaint_NotFound(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.UpdateComplaint(ctx, 99, types.ComplaintUpdate{Status: strPtr("Resolved")})
	assert.True(t, types.IsNotFound(err))

	_, err = svc.UpdateComplaint(ctx, 99, types.ComplaintUpdate{})
	assert.True(t, types.IsNotFound(err), "empty update still checks existence")
}

func TestDeleteComplaint(t *testing.T) {
	svc, b := setupService(t)
	ctx := context.Background()
	id, err := svc.AddComplaint(ctx, "Abandoned car")
	require.NoError(t, err)
	_, err = svc.UpdateComplaint(ctx, id, types.ComplaintUpdate{Status: strPtr("Towed")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteComplaint(ctx, id))

	_, err = svc.GetComplaint(ctx, id)
	assert.True(t, types.IsNotFound(err))

	err = b.WithTx(ctx, func(tb types.Tables) error {
		history, err := tb.ListHistory(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, history, "history rows must be removed with the complaint")
		return nil
	})
	require.NoError(t, err)

	assert.True(t, types.IsNotFound(svc.DeleteComplaint(ctx, id)))
}

func TestEndToEndScenario(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	id, err := svc.AddComplaint(ctx, "Broken streetlight")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	got, err := svc.GetComplaint(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Pending", got.Status)

	_, err = svc.UpdateComplaint(ctx, 1, types.ComplaintUpdate{Department: strPtr("Public Works")})
	require.NoError(t, err)
	got, err = svc.GetComplaint(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Public Works", got.Department)
	assert.Len(t, got.History, 2)

	_, err = svc.UpdateComplaint(ctx, 1, types.ComplaintUpdate{Status: strPtr("Resolved")})
	require.NoError(t, err)
	got, err = svc.GetComplaint(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Resolved", got.Status)
	assert.Len(t, got.History, 3)

	require.NoError(t, svc.DeleteComplaint(ctx, 1))
	_, err = svc.GetComplaint(ctx, 1)
	assert.True(t, types.IsNotFound(err))
}

// faultyStore fails every history insert after the statements before it
// have run, to prove the surrounding transaction is rolled back.
type faultyStore struct {
	inner types.Store
}

func (f faultyStore) WithTx(ctx context.Context, fn func(types.Tables) error) error {
	return f.inner.WithTx(ctx, func(tb types.Tables) error {
		return fn(faultyTables{Tables: tb})
	})
}

type faultyTables struct {
	types.Tables
}

var errDiskFull = errors.New("disk full")

func (faultyTables) InsertHistory(context.Context, int64, time.Time, string) (int64, error) {
	return 0, &types.StorageError{Op: "insert history", Err: errDiskFull}
}

func TestStorageFailureLeavesNoPartialWrites(t *testing.T) {
	svc, b := setupService(t)
	ctx := context.Background()
	id, err := svc.AddComplaint(ctx, "Existing complaint")
	require.NoError(t, err)

	faulty := NewService(faultyStore{inner: b})

	_, err = faulty.AddComplaint(ctx, "Should not persist")
	assert.True(t, types.IsStorage(err))
	assert.ErrorIs(t, err, errDiskFull)

	_, err = faulty.UpdateComplaint(ctx, id, types.ComplaintUpdate{Status: strPtr("Resolved")})
	assert.True(t, types.IsStorage(err))

	list, err := svc.ListComplaints(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, types.StatusPending, list[0].Status, "status write must be rolled back")

	got, err := svc.GetComplaint(ctx, id)
	require.NoError(t, err)
	assert.Len(t, got.History, 1)
}
