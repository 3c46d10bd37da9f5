package ui

import (
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/rba/internal/events"
	"github.com/desertthunder/rba/internal/models"
	"github.com/desertthunder/rba/internal/repositories"
	"github.com/desertthunder/rba/internal/scoring"
	"github.com/desertthunder/rba/internal/state"
)

type zeroRand struct{}

func (zeroRand) IntN(int) int { return 0 }

func newTestModel(t *testing.T) (*Model, *state.Container) {
	t.Helper()

	c := state.New(repositories.NewMemoryStore(0), events.NewBus(events.BusOpts{}), state.Opts{})
	if err := c.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if _, err := c.UpdatePreferences(models.PreferencesPatch{JobTitle: models.StringPtr("Engineer")}); err != nil {
		t.Fatalf("UpdatePreferences failed: %v", err)
	}
	for _, j := range []models.Job{
		{ID: "1", Title: "Designer", Company: "Globex"},
		{ID: "2", Title: "Backend Engineer", Company: "Acme"},
	} {
		if _, err := c.AddJob(j); err != nil {
			t.Fatalf("AddJob failed: %v", err)
		}
	}

	m := NewModel(c, scoring.NewEngine(zeroRand{}), nil)
	t.Cleanup(m.Close)

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m.Update(m.rankJobs()())
	return m, c
}

func press(m *Model, keys string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)})
}

func TestDashboard(t *testing.T) {
	m, _ := newTestModel(t)

	if len(m.ranked) != 2 {
		t.Fatalf("Expected 2 ranked jobs, got %d", len(m.ranked))
	}
	if m.ranked[0].Job.ID != "2" {
		t.Errorf("Expected best match first, got %s", m.ranked[0].Job.Title)
	}

	view := m.View()
	if !strings.Contains(view, "Backend Engineer") {
		t.Errorf("Dashboard missing job title, got: %s", view)
	}
	if !strings.Contains(view, "2 jobs saved") {
		t.Errorf("Dashboard missing metrics summary, got: %s", view)
	}
}

func TestDetailView(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.view != DetailView {
		t.Fatalf("Expected DetailView, got %v", m.view)
	}

	view := m.View()
	if !strings.Contains(view, "Backend Engineer at Acme") {
		t.Errorf("Detail missing heading, got: %s", view)
	}
	if !strings.Contains(view, "title") {
		t.Errorf("Detail missing factor breakdown, got: %s", view)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.view != DashboardView {
		t.Errorf("Expected DashboardView after esc, got %v", m.view)
	}
}

func TestRemoveJob(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		m, c := newTestModel(t)

		press(m, "x")
		if m.view != ConfirmView {
			t.Fatalf("Expected ConfirmView, got %v", m.view)
		}

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
		if cmd == nil {
			t.Fatal("Expected remove command")
		}
		m.Update(cmd())

		if got := len(c.Jobs()); got != 1 {
			t.Errorf("Expected 1 saved job, got %d", got)
		}
		if !strings.Contains(m.status, "Removed Backend Engineer") {
			t.Errorf("Expected removal status, got %q", m.status)
		}

		m.Update(m.waitForUpdate()())
		if m.metrics.JobsFound != 1 {
			t.Errorf("Expected metrics to follow the bus, got %d jobs", m.metrics.JobsFound)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		m, c := newTestModel(t)

		press(m, "x")
		press(m, "n")

		if m.view != DashboardView {
			t.Errorf("Expected DashboardView, got %v", m.view)
		}
		if got := len(c.Jobs()); got != 2 {
			t.Errorf("Expected 2 saved jobs, got %d", got)
		}
	})
}

func TestConcurrentCommands(t *testing.T) {
	m, c := newTestModel(t)
	jobs := c.Jobs()

	var wg sync.WaitGroup
	for _, cmd := range []tea.Cmd{m.removeJob(jobs[0]), m.rankJobs(), m.removeJob(jobs[1]), m.rankJobs()} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cmd()
		}()
	}
	wg.Wait()

	if got := len(c.Jobs()); got != 0 {
		t.Errorf("Expected both removals to apply, got %d saved jobs", got)
	}
	if got := c.Metrics().JobsFound; got != 0 {
		t.Errorf("Expected 0 jobs found, got %d", got)
	}
}

func TestClose(t *testing.T) {
	m, c := newTestModel(t)
	before := c.Bus().Count(events.MetricsUpdatedKind)

	m.Close()

	if got := c.Bus().Count(events.MetricsUpdatedKind); got != before-1 {
		t.Errorf("Expected subscription removed, had %d now %d", before, got)
	}
}
