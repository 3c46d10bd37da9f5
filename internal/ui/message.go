package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/rba/internal/models"
	"github.com/desertthunder/rba/internal/scoring"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgJobsRanked MsgKind = iota
	MsgMetricsUpdated
	MsgJobRemoved
)

// jobsRankedMsg is the constructor for [MsgJobsRanked]
func jobsRankedMsg(ranked []scoring.Ranked) Msg {
	return Msg{kind: MsgJobsRanked, data: ranked}
}

// metricsUpdatedMsg is the constructor for [MsgMetricsUpdated]
func metricsUpdatedMsg(metrics models.Metrics) Msg {
	return Msg{kind: MsgMetricsUpdated, data: metrics}
}

// jobRemovedMsg is the constructor for [MsgJobRemoved]
func jobRemovedMsg(job models.Job, err error) Msg {
	return Msg{
		kind: MsgJobRemoved,
		data: struct {
			job models.Job
			err error
		}{job, err},
	}
}
