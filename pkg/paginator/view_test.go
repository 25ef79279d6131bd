package paginator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func makePages(n int) []Page {
	pages := make([]Page, n)
	for i := range pages {
		pages[i] = Page{Index: i, Content: Embed(fmt.Sprintf("Title %d", i+1), "")}
	}
	return pages
}

func buttonLabels(v View) []string {
	labels := make([]string, len(v.Buttons))
	for i, b := range v.Buttons {
		labels[i] = b.Label
	}
	return labels
}

func TestBuildView_Labels(t *testing.T) {
	tests := []struct {
		total   int
		current int
		want    []string
	}{
		{total: 3, current: 0, want: []string{"1", "1", "Stop", "2", "3"}},
		{total: 3, current: 2, want: []string{"1", "2", "Stop", "3", "3"}},
		{total: 20, current: 0, want: []string{"1", "1", "Stop", "2", "5"}},
		{total: 20, current: 4, want: []string{"1", "4", "Stop", "6", "9"}},
		{total: 20, current: 10, want: []string{"7", "10", "Stop", "12", "15"}},
		{total: 20, current: 17, want: []string{"14", "17", "Stop", "19", "20"}},
		{total: 20, current: 19, want: []string{"16", "19", "Stop", "20", "20"}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_of_%d", tt.current, tt.total), func(t *testing.T) {
			view := BuildView("pg", tt.current, makePages(tt.total))
			assert.Equal(t, tt.want, buttonLabels(view))
		})
	}
}

func TestBuildView_DisabledStates(t *testing.T) {
	first := BuildView("pg", 0, makePages(5))
	for _, kind := range []ActionKind{ActionJumpBack4, ActionStepBack1} {
		b, ok := first.Button(kind)
		require.True(t, ok)
		assert.True(t, b.Disabled, kind.String())
	}
	for _, kind := range []ActionKind{ActionStop, ActionStepForward1, ActionJumpForward4} {
		b, _ := first.Button(kind)
		assert.False(t, b.Disabled, kind.String())
	}

	last := BuildView("pg", 4, makePages(5))
	for _, kind := range []ActionKind{ActionStepForward1, ActionJumpForward4} {
		b, _ := last.Button(kind)
		assert.True(t, b.Disabled, kind.String())
	}
	for _, kind := range []ActionKind{ActionJumpBack4, ActionStepBack1, ActionStop} {
		b, _ := last.Button(kind)
		assert.False(t, b.Disabled, kind.String())
	}

	middle := BuildView("pg", 2, makePages(5))
	for _, b := range middle.Buttons {
		assert.False(t, b.Disabled, b.Kind.String())
	}
}

func TestBuildView_IdentifiersAndStyles(t *testing.T) {
	view := BuildView("pg", 1, makePages(3))

	ids := make([]string, len(view.Buttons))
	for i, b := range view.Buttons {
		ids[i] = b.ID
	}
	assert.Equal(t, []string{"pg_B1", "pg_B2", "pg_B3", "pg_B4", "pg_B5"}, ids)
	assert.Equal(t, "pg_S1", view.JumpList.ID)

	stop, _ := view.Button(ActionStop)
	assert.Equal(t, StyleDanger, stop.Style)
	assert.Equal(t, "⏹", stop.Emoji)

	_, ok := view.Button(ActionJumpTo)
	assert.False(t, ok)
}

func TestBuildView_JumpListOptions(t *testing.T) {
	pages := makePages(3)
	pages[1].Name = "Moderation"

	view := BuildView("pg", 1, pages)

	assert.Equal(t, "Page 2", view.JumpList.Placeholder)
	assert.Equal(t, []Option{
		{Index: 0, Label: "Page 1", Value: "0", Description: "Show page 1"},
		{Index: 1, Label: "Moderation", Value: "1", Description: "Show moderation", Default: true},
		{Index: 2, Label: "Page 3", Value: "2", Description: "Show page 3"},
	}, view.JumpList.Options)
}

func TestJumpWindow(t *testing.T) {
	tests := []struct {
		current, total int
		start, end     int
	}{
		{0, 1, 0, 1},
		{24, 25, 0, 25},
		{0, 100, 0, 25},
		{14, 100, 0, 25},
		{15, 100, 3, 28},
		{50, 100, 38, 63},
		{84, 100, 72, 97},
		{85, 100, 75, 100},
		{99, 100, 75, 100},
		{15, 30, 5, 30},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_of_%d", tt.current, tt.total), func(t *testing.T) {
			start, end := JumpWindow(tt.current, tt.total)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestBuildView_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		total := rapid.IntRange(1, 400).Draw(t, "total")
		current := rapid.IntRange(0, total-1).Draw(t, "current")

		view := BuildView("pg", current, makePages(total))
		options := view.JumpList.Options

		if len(options) != min(total, MaxJumpListOptions) {
			t.Fatalf("expected %d options, got %d", min(total, MaxJumpListOptions), len(options))
		}

		defaults := 0
		for i, opt := range options {
			if opt.Index < 0 || opt.Index >= total {
				t.Fatalf("option index %d out of range", opt.Index)
			}
			if i > 0 && opt.Index != options[i-1].Index+1 {
				t.Fatalf("options are not contiguous at %d", i)
			}
			if opt.Default {
				defaults++
				if opt.Index != current {
					t.Fatalf("default option %d, current %d", opt.Index, current)
				}
			}
		}
		if defaults != 1 {
			t.Fatalf("expected exactly one default option, got %d", defaults)
		}

		if len(view.Buttons) != 5 {
			t.Fatalf("expected 5 buttons, got %d", len(view.Buttons))
		}
		for _, b := range view.Buttons {
			if b.Kind == ActionStop && b.Disabled {
				t.Fatal("stop must never be disabled")
			}
		}
	})
}
