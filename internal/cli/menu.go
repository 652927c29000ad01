package cli

import (
	"fmt"
	"strings"
)

// Action is one entry of the interactive menu.
type Action int

// Menu actions, numbered as shown to the user.
const (
	ActionAdd Action = iota + 1
	ActionList
	ActionView
	ActionUpdate
	ActionDelete
	ActionExit
)

// menuTitles holds the label of each action in menu order.
var menuTitles = map[Action]string{
	ActionAdd:    "Add Complaint",
	ActionList:   "View All Complaints",
	ActionView:   "View Specific Complaint",
	ActionUpdate: "Update Complaint",
	ActionDelete: "Delete Complaint",
	ActionExit:   "Exit",
}

func (a Action) String() string {
	if t, ok := menuTitles[a]; ok {
		return t
	}
	return "Unknown"
}

// parseAction maps the user's menu input to an Action. Surrounding
// whitespace is ignored; anything other than 1-6 is rejected.
func parseAction(input string) (Action, bool) {
	switch strings.TrimSpace(input) {
	case "1":
		return ActionAdd, true
	case "2":
		return ActionList, true
	case "3":
		return ActionView, true
	case "4":
		return ActionUpdate, true
	case "5":
		return ActionDelete, true
	case "6":
		return ActionExit, true
	default:
		return 0, false
	}
}

// menuText renders the menu shown before every prompt.
func menuText() string {
	var b strings.Builder
	b.WriteString("\nComplaint Management System\n")
	for a := ActionAdd; a <= ActionExit; a++ {
		fmt.Fprintf(&b, "%d. %s\n", int(a), a)
	}
	return b.String()
}
