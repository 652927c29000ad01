// Package complaint implements the complaint use-cases: registering,
// listing, viewing, updating and deleting complaints. Every change to a
// complaint is paired with a history entry written in the same transaction.
package complaint

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/complaints/pkg/types"
)

// Service handles the business logic for complaints.
type Service struct {
	store types.Store
	log   zerolog.Logger
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for operation traces.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock overrides the time source used for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a complaint service over store.
func NewService(store types.Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		log:   zerolog.Nop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddComplaint registers a complaint with status Pending and no department,
// records the "Complaint Registered" entry, and returns the new id. The
// description is stored as given; whitespace-only text is rejected.
func (s *Service) AddComplaint(ctx context.Context, description string) (int64, error) {
	if strings.TrimSpace(description) == "" {
		return 0, &types.ValidationError{Field: "description", Reason: "must not be empty"}
	}

	var id int64
	err := s.store.WithTx(ctx, func(tb types.Tables) error {
		var err error
		id, err = tb.InsertComplaint(ctx, description)
		if err != nil {
			return err
		}
		_, err = tb.InsertHistory(ctx, id, s.now(), types.ActionRegistered)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("add complaint: %w", err)
	}

	s.log.Debug().Int64("complaint_id", id).Msg("complaint registered")
	return id, nil
}

// ListComplaints returns every complaint in ascending id order. An empty
// store yields an empty slice.
func (s *Service) ListComplaints(ctx context.Context) ([]types.Complaint, error) {
	var complaints []types.Complaint
	err := s.store.WithTx(ctx, func(tb types.Tables) error {
		var err error
		complaints, err = tb.ListComplaints(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	if complaints == nil {
		complaints = []types.Complaint{}
	}

	s.log.Debug().Int("count", len(complaints)).Msg("complaints listed")
	return complaints, nil
}

// GetComplaint returns the complaint and its history, oldest entry first.
func (s *Service) GetComplaint(ctx context.Context, id int64) (*types.ComplaintDetail, error) {
	var detail *types.ComplaintDetail
	err := s.store.WithTx(ctx, func(tb types.Tables) error {
		c, err := s.lookup(ctx, tb, id)
		if err != nil {
			return err
		}
		history, err := tb.ListHistory(ctx, id)
		if err != nil {
			return err
		}
		detail = &types.ComplaintDetail{Complaint: *c, History: history}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get complaint: %w", err)
	}

	s.log.Debug().Int64("complaint_id", id).Int("history", len(detail.History)).Msg("complaint viewed")
	return detail, nil
}

// UpdateComplaint writes the supplied fields of u. Each written field appends
// its own history entry, status before department. An update with no fields
// writes nothing but still fails for an unknown id.
func (s *Service) UpdateComplaint(ctx context.Context, id int64, u types.ComplaintUpdate) (*types.Complaint, error) {
	changes, err := changesFor(u)
	if err != nil {
		return nil, err
	}

	var updated *types.Complaint
	err = s.store.WithTx(ctx, func(tb types.Tables) error {
		if _, err := s.lookup(ctx, tb, id); err != nil {
			return err
		}
		for _, ch := range changes {
			if err := tb.UpdateComplaintField(ctx, id, ch.field, ch.value); err != nil {
				return err
			}
			if _, err := tb.InsertHistory(ctx, id, s.now(), ch.action); err != nil {
				return err
			}
		}
		c, err := s.lookup(ctx, tb, id)
		if err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update complaint: %w", err)
	}

	s.log.Debug().Int64("complaint_id", id).Int("changes", len(changes)).Msg("complaint updated")
	return updated, nil
}

// DeleteComplaint removes the complaint and all of its history.
func (s *Service) DeleteComplaint(ctx context.Context, id int64) error {
	var removed int64
	err := s.store.WithTx(ctx, func(tb types.Tables) error {
		if _, err := s.lookup(ctx, tb, id); err != nil {
			return err
		}
		var err error
		removed, err = tb.DeleteHistory(ctx, id)
		if err != nil {
			return err
		}
		return tb.DeleteComplaint(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete complaint: %w", err)
	}

	s.log.Debug().Int64("complaint_id", id).Int64("history", removed).Msg("complaint deleted")
	return nil
}

// lookup fetches a complaint and turns the store's not-found signal into a
// NotFoundError carrying the id.
func (s *Service) lookup(ctx context.Context, tb types.Tables, id int64) (*types.Complaint, error) {
	c, err := tb.GetComplaint(ctx, id)
	if err != nil {
		if types.IsNotFound(err) {
			return nil, &types.NotFoundError{ComplaintID: id}
		}
		return nil, err
	}
	return c, nil
}

// change is one field write and the history action describing it.
type change struct {
	field  string
	value  string
	action string
}

// changesFor validates u and orders its fields: status first, then department.
func changesFor(u types.ComplaintUpdate) ([]change, error) {
	var changes []change
	if u.Status != nil {
		status := strings.TrimSpace(*u.Status)
		if status == "" {
			return nil, &types.ValidationError{Field: "status", Reason: "must not be blank"}
		}
		changes = append(changes, change{types.FieldStatus, status, types.StatusAction(status)})
	}
	if u.Department != nil {
		department := strings.TrimSpace(*u.Department)
		if department == "" {
			return nil, &types.ValidationError{Field: "department", Reason: "must not be blank"}
		}
		changes = append(changes, change{types.FieldDepartment, department, types.DepartmentAction(department)})
	}
	return changes, nil
}
