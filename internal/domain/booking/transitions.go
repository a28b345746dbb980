package booking

import "strings"

type Status string

const (
	StatusPending       Status = "pending"
	StatusOnHold        Status = "on-hold"
	StatusConfirmed     Status = "confirmed"
	StatusPaymentFailed Status = "payment_failed"
	StatusCancelled     Status = "cancelled"
	StatusCompleted     Status = "completed"
)

// Statuses lists every lifecycle status.
var Statuses = []Status{
	StatusPending,
	StatusOnHold,
	StatusConfirmed,
	StatusPaymentFailed,
	StatusCancelled,
	StatusCompleted,
}

func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Statuses {
		if s == known {
			return s, true
		}
	}
	return "", false
}

// Blocking reports whether a booking in this status owns its dates.
func (s Status) Blocking() bool {
	switch s {
	case StatusOnHold, StatusConfirmed, StatusCompleted:
		return true
	}
	return false
}

// Editable reports whether field patches are accepted in this status.
func (s Status) Editable() bool {
	switch s {
	case StatusPending, StatusOnHold, StatusConfirmed:
		return true
	}
	return false
}

// Action names a lifecycle request. The same target status can be legal
// through one action and illegal through another.
type Action string

const (
	ActionConvertHold  Action = "convert_hold"
	ActionCancelHold   Action = "cancel_hold"
	ActionBulkCancel   Action = "bulk_cancel"
	ActionCancel       Action = "cancel"
	ActionComplete     Action = "complete"
	ActionBulkComplete Action = "bulk_complete"

	// Same-state mutations; validated by status but never change it.
	ActionExtendHold Action = "extend_hold"
	ActionEdit       Action = "edit"
)

// TransitionActions are the actions that move a booking between statuses.
var TransitionActions = []Action{
	ActionConvertHold,
	ActionCancelHold,
	ActionBulkCancel,
	ActionCancel,
	ActionComplete,
	ActionBulkComplete,
}

var transitions = map[Action]map[Status]Status{
	ActionConvertHold: {
		StatusOnHold: StatusConfirmed,
	},
	ActionCancelHold: {
		StatusOnHold: StatusCancelled,
	},
	ActionBulkCancel: {
		StatusPending: StatusCancelled,
		StatusOnHold:  StatusCancelled,
	},
	ActionCancel: {
		StatusConfirmed: StatusCancelled,
		StatusCompleted: StatusCancelled,
	},
	ActionComplete: {
		StatusConfirmed: StatusCompleted,
	},
	ActionBulkComplete: {
		StatusConfirmed: StatusCompleted,
	},
}

// Target resolves the status an action leads to from the given source.
func Target(from Status, action Action) (Status, bool) {
	targets, ok := transitions[action]
	if !ok {
		return "", false
	}
	to, ok := targets[from]
	return to, ok
}

func (a Action) Describe() string {
	switch a {
	case ActionConvertHold:
		return "convert hold of"
	case ActionCancelHold:
		return "cancel hold of"
	case ActionBulkCancel, ActionCancel:
		return "cancel"
	case ActionComplete, ActionBulkComplete:
		return "complete"
	case ActionExtendHold:
		return "extend hold of"
	case ActionEdit:
		return "edit"
	}
	return string(a)
}
