package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/pirtoo/extunes/internal/shared"
)

var _ list.Item = playlistItem{}

// playlistItem is one library playlist in the selection list. The selected
// set is shared with the model so toggles show up without rebuilding items.
type playlistItem struct {
	name     string
	tracks   int
	size     int64
	flags    string
	selected map[string]bool
}

func (i playlistItem) FilterValue() string { return i.name }

func (i playlistItem) Title() string {
	mark := "[ ]"
	if i.selected[i.name] {
		mark = "[x]"
	}
	return fmt.Sprintf("%s %s", mark, i.name)
}

func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d tracks • %s", i.tracks, shared.FormatBytes(i.size))
	if i.flags != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.flags)
	}
	return desc
}
