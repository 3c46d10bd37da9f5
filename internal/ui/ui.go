package ui

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/rba/internal/events"
	"github.com/desertthunder/rba/internal/models"
	"github.com/desertthunder/rba/internal/scoring"
	"github.com/desertthunder/rba/internal/shared"
	"github.com/desertthunder/rba/internal/state"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	DashboardView ViewState = iota
	DetailView
	ConfirmView
)

// Model represents the TUI application state.
//
// Commands run on bubbletea goroutines, so every container call made from a command holds mu.
type Model struct {
	mu        sync.Mutex
	container *state.Container
	engine    *scoring.Engine
	logger    *log.Logger
	view      ViewState
	width     int
	height    int
	jobList   list.Model
	ranked    []scoring.Ranked
	selected  *scoring.Ranked
	metrics   models.Metrics
	profile   models.Profile
	updates   chan Msg
	subs      []events.Subscription
	status    string
	err       error
	help      help.Model
	keys      keyMap
}

// NewModel creates a new TUI model over container, ranking jobs with engine.
//
// The model subscribes to metric updates on the container's bus; call [Model.Close] to release the subscription.
func NewModel(container *state.Container, engine *scoring.Engine, logger *log.Logger) *Model {
	if logger == nil {
		logger = shared.NopLogger()
	}

	m := &Model{
		container: container,
		engine:    engine,
		logger:    shared.WithLogger(logger, "component", "ui"),
		view:      DashboardView,
		metrics:   container.Metrics(),
		profile:   container.Profile(),
		updates:   make(chan Msg, 16),
		jobList:   list.New(nil, list.NewDefaultDelegate(), 0, 0),
		help:      help.New(),
		keys:      newKeyMap(),
	}
	m.jobList.Title = "Saved Jobs"

	m.subs = append(m.subs, events.Subscribe(container.Bus(), events.MetricsUpdated, func(metrics models.Metrics) error {
		select {
		case m.updates <- metricsUpdatedMsg(metrics):
		default:
			m.logger.Debug("dropping metrics update, dashboard is behind")
		}
		return nil
	}))
	return m
}

// Close unsubscribes the model from the container's bus.
func (m *Model) Close() {
	for _, sub := range m.subs {
		m.container.Bus().Unsubscribe(sub)
	}
	m.subs = nil
}

// Init initializes the TUI by ranking the saved jobs.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.rankJobs(), m.waitForUpdate())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.jobList.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case DashboardView:
			return m.handleDashboardKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.jobList, cmd = m.jobList.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgJobsRanked:
		m.ranked = msg.data.([]scoring.Ranked)
		items := make([]list.Item, len(m.ranked))
		for i, r := range m.ranked {
			items[i] = jobItem{ranked: r}
		}
		return m, m.jobList.SetItems(items)

	case MsgMetricsUpdated:
		m.metrics = msg.data.(models.Metrics)
		return m, m.waitForUpdate()

	case MsgJobRemoved:
		data := msg.data.(struct {
			job models.Job
			err error
		})
		m.view = DashboardView
		m.selected = nil
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.status = fmt.Sprintf("Removed %s at %s", data.job.Title, data.job.Company)
		return m, m.rankJobs()
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case DashboardView:
		return m.renderDashboard()
	case DetailView:
		return m.renderDetail()
	case ConfirmView:
		return m.renderConfirm()
	default:
		return ""
	}
}

func (m *Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.jobList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.jobList, cmd = m.jobList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.refresh):
		m.status = ""
		return m, m.rankJobs()
	case key.Matches(msg, m.keys.enter):
		if r, ok := m.selectedJob(); ok {
			m.selected = &r
			m.view = DetailView
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if r, ok := m.selectedJob(); ok {
			m.selected = &r
			m.view = ConfirmView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.jobList, cmd = m.jobList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = DashboardView
		m.selected = nil
	case key.Matches(msg, m.keys.remove):
		m.view = ConfirmView
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = DashboardView
		m.selected = nil
		return m, nil
	case key.Matches(msg, m.keys.yes):
		return m, m.removeJob(m.selected.Job)
	}
	return m, nil
}

func (m *Model) selectedJob() (scoring.Ranked, bool) {
	item, ok := m.jobList.SelectedItem().(jobItem)
	if !ok {
		return scoring.Ranked{}, false
	}
	return item.ranked, true
}

func (m *Model) rankJobs() tea.Cmd {
	return func() tea.Msg {
		m.mu.Lock()
		defer m.mu.Unlock()

		var resume *models.Resume
		if r, ok := m.container.LookupResume(); ok {
			resume = &r
		}
		prefs := m.container.Preferences()
		return jobsRankedMsg(m.engine.Rank(m.container.Jobs(), resume, &prefs))
	}
}

func (m *Model) removeJob(job models.Job) tea.Cmd {
	return func() tea.Msg {
		m.mu.Lock()
		defer m.mu.Unlock()

		jobs := slices.DeleteFunc(m.container.Jobs(), func(j models.Job) bool {
			return j.ID == job.ID && j.Title == job.Title && j.Company == job.Company
		})
		err := m.container.SetJobs(jobs)
		if err != nil {
			m.logger.Error("failed to remove job", "title", job.Title, "error", err)
		}
		return jobRemovedMsg(job, err)
	}
}

func (m *Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		return <-m.updates
	}
}

func (m *Model) renderSummary() string {
	resume := styles.warn.Render("no resume")
	if m.metrics.ResumeUploaded {
		resume = styles.ok.Render("resume uploaded")
	}

	last := "never"
	if m.metrics.LastAnalysisDate != nil {
		last = m.metrics.LastAnalysisDate.Local().Format("Jan 2, 2006")
	}

	lines := []string{
		fmt.Sprintf("%s • %d analyses • avg ATS %.1f • last %s", resume, m.metrics.TotalAnalyses, m.metrics.AverageATSScore, last),
		fmt.Sprintf("%d jobs saved", m.metrics.JobsFound),
	}
	return styles.box.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderDashboard() string {
	name := m.profile.Name
	if name == "" {
		name = "Job Search"
	}
	title := styles.title.Render(name)

	status := ""
	if m.status != "" {
		status = "\n" + styles.ok.Render(m.status)
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.remove, m.keys.refresh, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s\n\n%s", title, m.renderSummary(), status, m.jobList.View(), helpView)
}

func (m *Model) renderDetail() string {
	if m.selected == nil {
		return ""
	}
	r := m.selected
	title := styles.title.Render(fmt.Sprintf("%s at %s", r.Job.Title, r.Job.Company))

	var sb strings.Builder
	fmt.Fprintf(&sb, "Score: %s\n", styles.Score(r.Result.Score, fmt.Sprintf("%d%% (%s)", r.Result.Score, scoring.Label(r.Result.Score))))
	if r.Result.Fallback {
		sb.WriteString(styles.warn.Render("No factor applied; this is a baseline estimate.") + "\n")
	}
	for _, c := range r.Result.Breakdown {
		fmt.Fprintf(&sb, "  • %-10s %5.1f / %d\n", c.Factor, c.Points, c.Weight)
	}
	if len(r.Job.Skills) > 0 {
		fmt.Fprintf(&sb, "\nSkills: %s\n", strings.Join(r.Job.Skills, ", "))
	}
	if r.Job.URL != "" {
		fmt.Fprintf(&sb, "URL: %s\n", r.Job.URL)
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.remove, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, sb.String(), helpView)
}

func (m *Model) renderConfirm() string {
	if m.selected == nil {
		return ""
	}
	title := styles.title.Render(fmt.Sprintf("Remove '%s' at %s?", m.selected.Job.Title, m.selected.Job.Company))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s", title, helpView)
}
