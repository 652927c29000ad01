package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/complaints/pkg/types"
)

// historyTimeLayout is how history timestamps are shown to the user.
const historyTimeLayout = "2006-01-02 15:04:05"

// maxLineBytes bounds one answer. Longer lines are discarded whole.
const maxLineBytes = 1 << 20

// Service is the set of complaint operations the shell drives.
type Service interface {
	AddComplaint(ctx context.Context, description string) (int64, error)
	ListComplaints(ctx context.Context) ([]types.Complaint, error)
	GetComplaint(ctx context.Context, id int64) (*types.ComplaintDetail, error)
	UpdateComplaint(ctx context.Context, id int64, u types.ComplaintUpdate) (*types.Complaint, error)
	DeleteComplaint(ctx context.Context, id int64) error
}

// errInputClosed signals that stdin ended in the middle of an action.
var errInputClosed = errors.New("input closed")

// usageError is a malformed answer to a prompt. It is reported to the user
// and the loop continues.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// Shell is the interactive menu loop.
type Shell struct {
	svc Service
	in  *bufio.Reader
	out io.Writer
	log zerolog.Logger
}

// NewShell creates a shell reading answers from in and printing to out.
func NewShell(svc Service, in io.Reader, out io.Writer, log zerolog.Logger) *Shell {
	return &Shell{
		svc: svc,
		in:  bufio.NewReader(in),
		out: out,
		log: log,
	}
}

// Run shows the menu until the user picks Exit or the input ends. Errors
// from individual actions are printed and never stop the loop; Run only
// fails when reading the input fails.
func (s *Shell) Run(ctx context.Context) error {
	for {
		fmt.Fprint(s.out, menuText())
		choice, err := s.prompt("Enter choice: ")
		if err != nil {
			var usage *usageError
			if errors.As(err, &usage) {
				fmt.Fprintln(s.out, usage.msg)
				continue
			}
			return s.finish(err)
		}

		action, ok := parseAction(choice)
		if !ok {
			fmt.Fprintln(s.out, "Invalid choice, please try again.")
			continue
		}
		if action == ActionExit {
			fmt.Fprintln(s.out, "Exiting...")
			return nil
		}

		if err := s.dispatch(ctx, action); err != nil {
			if errors.Is(err, errInputClosed) {
				return s.finish(err)
			}
			s.report(action, err)
		}
	}
}

// dispatch runs one menu action.
func (s *Shell) dispatch(ctx context.Context, action Action) error {
	switch action {
	case ActionAdd:
		return s.add(ctx)
	case ActionList:
		return s.list(ctx)
	case ActionView:
		return s.view(ctx)
	case ActionUpdate:
		return s.update(ctx)
	case ActionDelete:
		return s.delete(ctx)
	case ActionExit:
		return nil
	default:
		return fmt.Errorf("unhandled action %d", int(action))
	}
}

func (s *Shell) add(ctx context.Context) error {
	description, err := s.prompt("Enter complaint description: ")
	if err != nil {
		return err
	}
	id, err := s.svc.AddComplaint(ctx, description)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Complaint added successfully with ID %d\n", id)
	return nil
}

func (s *Shell) list(ctx context.Context) error {
	complaints, err := s.svc.ListComplaints(ctx)
	if err != nil {
		return err
	}
	if len(complaints) == 0 {
		fmt.Fprintln(s.out, "No complaints found.")
		return nil
	}
	for _, c := range complaints {
		fmt.Fprintf(s.out, "ID: %d, Description: %s, Status: %s, Department: %s\n",
			c.ComplaintID, c.Description, c.Status, displayDepartment(c.Department))
	}
	return nil
}

func (s *Shell) view(ctx context.Context) error {
	id, err := s.promptID()
	if err != nil {
		return err
	}
	detail, err := s.svc.GetComplaint(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "ID: %d\n", detail.ComplaintID)
	fmt.Fprintf(s.out, "Description: %s\n", detail.Description)
	fmt.Fprintf(s.out, "Status: %s\n", detail.Status)
	fmt.Fprintf(s.out, "Department: %s\n", displayDepartment(detail.Department))
	fmt.Fprintln(s.out, "\nHistory:")
	for _, h := range detail.History {
		fmt.Fprintf(s.out, "Timestamp: %s, Action: %s\n", h.Timestamp.Local().Format(historyTimeLayout), h.Action)
	}
	return nil
}

func (s *Shell) update(ctx context.Context) error {
	id, err := s.promptID()
	if err != nil {
		return err
	}
	status, err := s.prompt("Enter new status (leave blank to skip): ")
	if err != nil {
		return err
	}
	department, err := s.prompt("Enter new department (leave blank to skip): ")
	if err != nil {
		return err
	}

	u := types.ComplaintUpdate{
		Status:     optional(status),
		Department: optional(department),
	}
	if _, err := s.svc.UpdateComplaint(ctx, id, u); err != nil {
		return err
	}
	if u.Empty() {
		fmt.Fprintf(s.out, "No changes for complaint with ID %d.\n", id)
		return nil
	}
	fmt.Fprintf(s.out, "Complaint with ID %d updated successfully.\n", id)
	return nil
}

func (s *Shell) delete(ctx context.Context) error {
	id, err := s.promptID()
	if err != nil {
		return err
	}
	if err := s.svc.DeleteComplaint(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Complaint with ID %d deleted successfully.\n", id)
	return nil
}

// prompt prints label and returns the next input line without its newline.
func (s *Shell) prompt(label string) (string, error) {
	fmt.Fprint(s.out, label)
	return s.readLine()
}

// readLine reads one line of at most maxLineBytes. A longer line is consumed
// up to its newline and reported as a usageError, so the next read starts on
// a fresh line.
func (s *Shell) readLine() (string, error) {
	var (
		line    []byte
		tooLong bool
	)
	for {
		chunk, more, err := s.in.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return "", fmt.Errorf("read input: %w", err)
			}
			if len(line) == 0 && !tooLong {
				return "", errInputClosed
			}
			break
		}
		if !tooLong {
			if len(line)+len(chunk) > maxLineBytes {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if !more {
			break
		}
	}
	if tooLong {
		return "", &usageError{msg: fmt.Sprintf("Input too long: lines are limited to %d bytes.", maxLineBytes)}
	}
	return strings.TrimRight(string(line), "\r"), nil
}

// promptID asks for a complaint id and parses it.
func (s *Shell) promptID() (int64, error) {
	raw, err := s.prompt("Enter complaint ID: ")
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, &usageError{msg: fmt.Sprintf("Invalid complaint ID %q: please enter a positive number.", strings.TrimSpace(raw))}
	}
	return id, nil
}

// report prints a user-facing message for err.
func (s *Shell) report(action Action, err error) {
	var (
		nf    *types.NotFoundError
		ve    *types.ValidationError
		usage *usageError
	)
	switch {
	case errors.As(err, &usage):
		fmt.Fprintln(s.out, usage.msg)
	case errors.As(err, &nf):
		fmt.Fprintf(s.out, "Complaint with ID %d not found.\n", nf.ComplaintID)
	case errors.As(err, &ve):
		fmt.Fprintf(s.out, "Invalid input: %s.\n", ve.Error())
	case types.IsStorage(err):
		s.log.Error().Err(err).Stringer("action", action).Msg("storage failure")
		fmt.Fprintf(s.out, "Storage error: %v\n", err)
	default:
		s.log.Error().Err(err).Stringer("action", action).Msg("action failed")
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
}

// finish ends the loop: closed input is a normal exit, read failures are not.
func (s *Shell) finish(err error) error {
	if errors.Is(err, errInputClosed) {
		fmt.Fprintln(s.out)
		return nil
	}
	return err
}

// optional maps blank input to "skip".
func optional(v string) *string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}

func displayDepartment(d string) string {
	if d == "" {
		return "None"
	}
	return d
}
