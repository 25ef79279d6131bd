package paginator

import (
	"strconv"
	"strings"
)

// ActionKind identifies what a control does.
type ActionKind int

const (
	ActionJumpBack4 ActionKind = iota + 1
	ActionStepBack1
	ActionStop
	ActionStepForward1
	ActionJumpForward4
	ActionJumpTo
)

var actionNames = map[ActionKind]string{
	ActionJumpBack4:    "jump_back_4",
	ActionStepBack1:    "step_back_1",
	ActionStop:         "stop",
	ActionStepForward1: "step_forward_1",
	ActionJumpForward4: "jump_forward_4",
	ActionJumpTo:       "jump_to",
}

func (k ActionKind) String() string {
	if name, ok := actionNames[k]; ok {
		return name
	}
	return "unknown"
}

// Control identifier suffixes appended to the configured base identifier.
const (
	SuffixJumpBack4    = "_B1"
	SuffixStepBack1    = "_B2"
	SuffixStop         = "_B3"
	SuffixStepForward1 = "_B4"
	SuffixJumpForward4 = "_B5"
	SuffixJumpList     = "_S1"
)

var suffixActions = map[string]ActionKind{
	SuffixJumpBack4:    ActionJumpBack4,
	SuffixStepBack1:    ActionStepBack1,
	SuffixStop:         ActionStop,
	SuffixStepForward1: ActionStepForward1,
	SuffixJumpForward4: ActionJumpForward4,
}

// Action is a decoded control activation. Target is only meaningful for
// ActionJumpTo and holds the zero-based page chosen in the jump-list.
type Action struct {
	Kind   ActionKind
	Target int
}

// ControlID returns the wire identifier for a control suffix.
func ControlID(baseID, suffix string) string {
	return baseID + suffix
}

// OwnsControlID reports whether customID belongs to the engine namespace.
func OwnsControlID(baseID, customID string) bool {
	return baseID != "" && strings.HasPrefix(customID, baseID)
}

// ParseAction decodes a wire identifier and its selected values. The second
// return value is false when the identifier is outside the namespace, has an
// unknown suffix, or carries an unusable jump-list value.
func ParseAction(baseID, customID string, values []string) (Action, bool) {
	if !OwnsControlID(baseID, customID) {
		return Action{}, false
	}

	suffix := strings.TrimPrefix(customID, baseID)
	if kind, ok := suffixActions[suffix]; ok {
		return Action{Kind: kind}, true
	}

	if suffix != SuffixJumpList || len(values) == 0 {
		return Action{}, false
	}

	target, err := strconv.Atoi(strings.TrimSpace(values[0]))
	if err != nil {
		return Action{}, false
	}
	return Action{Kind: ActionJumpTo, Target: target}, true
}

// Apply computes the requested index for a navigation action. The result is
// not clamped. It must not be called for ActionStop.
func (a Action) Apply(current int) int {
	switch a.Kind {
	case ActionJumpBack4:
		return current - 4
	case ActionStepBack1:
		return current - 1
	case ActionStepForward1:
		return current + 1
	case ActionJumpForward4:
		return current + 4
	case ActionJumpTo:
		return a.Target
	default:
		return current
	}
}

// Clamp bounds index to [0, total-1].
func Clamp(index, total int) int {
	if index >= total {
		index = total - 1
	}
	if index < 0 {
		index = 0
	}
	return index
}
