package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/playlistinator/internal/formatter"
	"github.com/desertthunder/playlistinator/internal/models"
)

var _ list.Item = runItem{}

// runItem wraps [models.Run] to implement [list.Item].
type runItem struct {
	run *models.Run
}

func (i runItem) FilterValue() string { return i.run.Message() }
func (i runItem) Title() string {
	mark := styles.ok.Render("✓")
	if !i.run.Success() {
		mark = styles.err.Render("✗")
	}
	return fmt.Sprintf("%s #%d %s", mark, i.run.Sequence(), i.run.Message())
}
func (i runItem) Description() string {
	desc := fmt.Sprintf("%s • %s • %s", i.run.Surface(), i.run.CreatedAt().Local().Format(time.DateTime), formatter.FormatDuration(i.run.Duration()))
	if n, ok := i.run.Result().TrackCount(); ok {
		desc = fmt.Sprintf("%s • %d tracks", desc, n)
	}
	return desc
}

func runItems(runs []*models.Run) []list.Item {
	items := make([]list.Item, len(runs))
	for i, run := range runs {
		items[i] = runItem{run: run}
	}
	return items
}
