package bot

// Action is one of the fixed set of things a user can do from the chat.
type Action int

const (
	ActionUnknown Action = iota
	ActionStartSession
	ActionStopSession
	ActionTodayStats
	ActionSetBirthdayPrompt
	ActionBirthdayText
	ActionBack
)

// Callback payloads attached to inline buttons. Kept stable so buttons on
// messages sent by older versions keep working.
var callbackData = map[Action]string{
	ActionStartSession:      "start_deepwork",
	ActionStopSession:       "stop_deepwork",
	ActionTodayStats:        "today_stats",
	ActionSetBirthdayPrompt: "set_birthday",
	ActionBack:              "back_to_main",
}

var callbackActions = func() map[string]Action {
	m := make(map[string]Action, len(callbackData))
	for a, d := range callbackData {
		m[d] = a
	}
	return m
}()

// CallbackData returns the button payload for a, or "" for actions that
// do not come from a button.
func (a Action) CallbackData() string {
	return callbackData[a]
}

// ParseCallback maps a button payload back to its action.
func ParseCallback(data string) (Action, bool) {
	a, ok := callbackActions[data]
	return a, ok
}

func (a Action) String() string {
	switch a {
	case ActionStartSession:
		return "start-session"
	case ActionStopSession:
		return "stop-session"
	case ActionTodayStats:
		return "view-today-stats"
	case ActionSetBirthdayPrompt:
		return "set-birthday-prompt"
	case ActionBirthdayText:
		return "birthday-text-submission"
	case ActionBack:
		return "navigate-back"
	default:
		return "unknown"
	}
}
