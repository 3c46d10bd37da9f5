package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/rba/internal/scoring"
)

var _ list.Item = jobItem{}

// jobItem wraps [scoring.Ranked] to implement [list.Item].
type jobItem struct {
	ranked scoring.Ranked
}

func (i jobItem) FilterValue() string { return i.ranked.Job.Title + " " + i.ranked.Job.Company }
func (i jobItem) Title() string {
	return fmt.Sprintf("%3d%%  %s", i.ranked.Result.Score, i.ranked.Job.Title)
}
func (i jobItem) Description() string {
	parts := []string{i.ranked.Job.Company}
	if i.ranked.Job.Location != "" {
		parts = append(parts, i.ranked.Job.Location)
	}
	parts = append(parts, scoring.Label(i.ranked.Result.Score))
	return strings.Join(parts, " • ")
}
