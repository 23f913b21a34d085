package response

// Action is the table mutation carried by a data frame.
type Action uint8

const (
	ActionUnknown Action = iota
	ActionPartial
	ActionInsert
	ActionUpdate
	ActionDelete
	_action_end
)

func (a Action) IsAvailable() bool {
	return a > ActionUnknown && a < _action_end
}

func (a Action) String() string {
	switch a {
	case ActionPartial:
		return "partial"
	case ActionInsert:
		return "insert"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// ParseAction maps the wire action name. Unrecognized names yield ActionUnknown.
func ParseAction(s string) Action {
	switch s {
	case "partial":
		return ActionPartial
	case "insert":
		return ActionInsert
	case "update":
		return ActionUpdate
	case "delete":
		return ActionDelete
	default:
		return ActionUnknown
	}
}
