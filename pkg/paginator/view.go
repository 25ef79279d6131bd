package paginator

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxJumpListOptions is the ceiling for a selectable list.
const MaxJumpListOptions = 25

// ButtonStyle is a rendering hint for transports that support colored buttons.
type ButtonStyle int

const (
	StyleSecondary ButtonStyle = iota
	StyleSuccess
	StyleDanger
)

// Button is one of the five fixed navigation controls.
type Button struct {
	Kind     ActionKind
	ID       string
	Label    string
	Emoji    string
	Style    ButtonStyle
	Disabled bool
}

// Option is one entry of the jump-list.
type Option struct {
	Index       int
	Label       string
	Value       string
	Description string
	Default     bool
}

// JumpList is the bounded select control.
type JumpList struct {
	ID          string
	Placeholder string
	Options     []Option
}

// View is the full control set attached to a page.
type View struct {
	Buttons  []Button
	JumpList JumpList
}

// JumpWindow returns the half-open range of page indexes listed in the
// jump-list. The window has length min(total, 25) and contains current.
func JumpWindow(current, total int) (start, end int) {
	switch {
	case total <= MaxJumpListOptions:
		return 0, total
	case current <= 14:
		return 0, MaxJumpListOptions
	case current >= total-15:
		return total - MaxJumpListOptions, total
	default:
		return current - 12, current + 13
	}
}

// BuildView computes the controls for the page at current. It has no side
// effects.
func BuildView(baseID string, current int, pages []Page) View {
	total := len(pages)
	first := current == 0
	last := current >= total-1

	buttons := []Button{
		{
			Kind:     ActionJumpBack4,
			ID:       ControlID(baseID, SuffixJumpBack4),
			Label:    strconv.Itoa(max(1, current-3)),
			Emoji:    "⏮",
			Style:    StyleSecondary,
			Disabled: first,
		},
		{
			Kind:     ActionStepBack1,
			ID:       ControlID(baseID, SuffixStepBack1),
			Label:    strconv.Itoa(max(1, current)),
			Emoji:    "⏪",
			Style:    StyleSuccess,
			Disabled: first,
		},
		{
			Kind:  ActionStop,
			ID:    ControlID(baseID, SuffixStop),
			Label: "Stop",
			Emoji: "⏹",
			Style: StyleDanger,
		},
		{
			Kind:     ActionStepForward1,
			ID:       ControlID(baseID, SuffixStepForward1),
			Label:    strconv.Itoa(min(total, current+2)),
			Emoji:    "⏩",
			Style:    StyleSuccess,
			Disabled: last,
		},
		{
			Kind:     ActionJumpForward4,
			ID:       ControlID(baseID, SuffixJumpForward4),
			Label:    strconv.Itoa(min(total, current+5)),
			Emoji:    "⏭",
			Style:    StyleSecondary,
			Disabled: last,
		},
	}

	start, end := JumpWindow(current, total)
	options := make([]Option, 0, end-start)
	for i := start; i < end; i++ {
		label := pages[i].Label()
		options = append(options, Option{
			Index:       i,
			Label:       label,
			Value:       strconv.Itoa(i),
			Description: "Show " + strings.ToLower(label),
			Default:     i == current,
		})
	}

	return View{
		Buttons: buttons,
		JumpList: JumpList{
			ID:          ControlID(baseID, SuffixJumpList),
			Placeholder: fmt.Sprintf("Page %d", current+1),
			Options:     options,
		},
	}
}

// Button returns the button of the given kind.
func (v View) Button(kind ActionKind) (Button, bool) {
	for _, b := range v.Buttons {
		if b.Kind == kind {
			return b, true
		}
	}
	return Button{}, false
}
