package state

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rba/internal/events"
	"github.com/desertthunder/rba/internal/models"
	"github.com/desertthunder/rba/internal/shared"
)

// Store is the durable key-value medium behind a [Container].
type Store interface {
	Read(key string) (string, bool, error)
	Write(key, value string) error
	Delete(key string) error
	Keys() ([]string, error)
}

// hook recomputes derived state after a successful write of value.
type hook func(c *Container, value any) error

// Container holds the job search collections.
//
// Two containers over the same [Store] share keys and fully interleave by call order. Events are only delivered
// to subscribers of the bus owned by the container that received the call.
type Container struct {
	store  Store
	bus    *events.Bus
	logger *log.Logger
	now    func() time.Time
	hooks  map[models.Collection]hook
}

// Opts contains configuration options for creating a Container.
type Opts struct {
	Logger *log.Logger
	Clock  func() time.Time
}

// New creates a [Container] over store, publishing to bus.
func New(store Store, bus *events.Bus, opts Opts) *Container {
	if opts.Logger == nil {
		opts.Logger = shared.NopLogger()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if bus == nil {
		bus = events.NewBus(events.BusOpts{Logger: opts.Logger})
	}

	return &Container{
		store:  store,
		bus:    bus,
		logger: shared.WithLogger(opts.Logger, "component", "state"),
		now:    opts.Clock,
		hooks: map[models.Collection]hook{
			models.ResumeCollection:   metricsHook(resumeWritten),
			models.AnalysisCollection: metricsHook(analysisWritten),
			models.JobsCollection:     metricsHook(jobsWritten),
		},
	}
}

// Bus returns the event bus the container publishes to.
func (c *Container) Bus() *events.Bus { return c.bus }

// Init creates the default Profile, Preferences and Metrics where they are absent.
func (c *Container) Init() error {
	if _, ok := get[models.Profile](c, models.ProfileCollection); !ok {
		if err := c.SetProfile(models.DefaultProfile(c.now().UTC())); err != nil {
			return err
		}
	}
	if _, ok := get[models.Preferences](c, models.PreferencesCollection); !ok {
		if err := c.SetPreferences(models.DefaultPreferences()); err != nil {
			return err
		}
	}
	if _, ok := get[models.Metrics](c, models.MetricsCollection); !ok {
		if err := c.setMetrics(models.DefaultMetrics()); err != nil {
			return err
		}
	}
	return nil
}

// Profile returns the stored profile or an empty one.
func (c *Container) Profile() models.Profile {
	p, _ := get[models.Profile](c, models.ProfileCollection)
	return p
}

// SetProfile replaces the profile.
func (c *Container) SetProfile(p models.Profile) error {
	return set(c, models.ProfileCollection, events.ProfileUpdated, p)
}

// UpdateProfile merges patch into the current profile and stores the result.
func (c *Container) UpdateProfile(patch models.ProfilePatch) (models.Profile, error) {
	updated := patch.Apply(c.Profile())
	if err := c.SetProfile(updated); err != nil {
		return models.Profile{}, err
	}
	return updated, nil
}

// Resume returns the stored resume or an empty one.
func (c *Container) Resume() models.Resume {
	r, _ := c.LookupResume()
	return r
}

// LookupResume returns the stored resume and whether one exists.
func (c *Container) LookupResume() (models.Resume, bool) {
	return get[models.Resume](c, models.ResumeCollection)
}

// SetResume replaces the resume and marks it uploaded in the metrics.
func (c *Container) SetResume(r models.Resume) error {
	return set(c, models.ResumeCollection, events.ResumeUpdated, r)
}

// Preferences returns the stored preferences or the defaults.
func (c *Container) Preferences() models.Preferences {
	p, ok := get[models.Preferences](c, models.PreferencesCollection)
	if !ok {
		return models.DefaultPreferences()
	}
	return p
}

// SetPreferences replaces the preferences.
func (c *Container) SetPreferences(p models.Preferences) error {
	return set(c, models.PreferencesCollection, events.PreferencesUpdated, p)
}

// UpdatePreferences merges patch into the current preferences and stores the result.
func (c *Container) UpdatePreferences(patch models.PreferencesPatch) (models.Preferences, error) {
	updated := patch.Apply(c.Preferences())
	if err := c.SetPreferences(updated); err != nil {
		return models.Preferences{}, err
	}
	return updated, nil
}

// Analysis returns the stored analysis or an empty one.
func (c *Container) Analysis() models.Analysis {
	a, _ := c.LookupAnalysis()
	return a
}

// LookupAnalysis returns the stored analysis and whether one exists.
func (c *Container) LookupAnalysis() (models.Analysis, bool) {
	return get[models.Analysis](c, models.AnalysisCollection)
}

// SetAnalysis replaces the analysis and records it in the metrics.
func (c *Container) SetAnalysis(a models.Analysis) error {
	return set(c, models.AnalysisCollection, events.AnalysisUpdated, a)
}

// Jobs returns the saved jobs, never nil.
func (c *Container) Jobs() []models.Job {
	jobs, ok := get[[]models.Job](c, models.JobsCollection)
	if !ok || jobs == nil {
		return []models.Job{}
	}
	return jobs
}

// SetJobs replaces the saved jobs.
func (c *Container) SetJobs(jobs []models.Job) error {
	if jobs == nil {
		jobs = []models.Job{}
	}
	return set(c, models.JobsCollection, events.JobsUpdated, jobs)
}

// AddJob appends job unless a job with the same id, or the same title and company, is already saved.
// It reports whether the job was added; duplicates are not written and publish nothing.
func (c *Container) AddJob(job models.Job) (bool, error) {
	jobs := c.Jobs()
	if models.ContainsJob(jobs, job) {
		c.logger.Debug("skipping duplicate job", "title", job.Title, "company", job.Company)
		return false, nil
	}

	if err := c.SetJobs(append(jobs, job)); err != nil {
		return false, err
	}
	return true, nil
}

// Metrics returns the derived metrics or zeroed defaults.
func (c *Container) Metrics() models.Metrics {
	m, _ := get[models.Metrics](c, models.MetricsCollection)
	return m
}

func (c *Container) setMetrics(m models.Metrics) error {
	return set(c, models.MetricsCollection, events.MetricsUpdated, m)
}

// ClearAll deletes every collection and drops all event subscriptions.
func (c *Container) ClearAll() error {
	var errs []error
	for _, col := range models.Collections {
		if err := c.store.Delete(col.Key()); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", col, err))
		}
	}
	c.bus.Clear()

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrPersistence, err)
	}
	c.logger.Info("cleared all collections")
	return nil
}

// Keys lists the stored collections, most recently written first.
func (c *Container) Keys() ([]models.Collection, error) {
	keys, err := c.store.Keys()
	if err != nil {
		return nil, err
	}

	cols := make([]models.Collection, 0, len(keys))
	for _, k := range keys {
		for _, col := range models.Collections {
			if col.Key() == k {
				cols = append(cols, col)
			}
		}
	}
	return cols, nil
}

func get[T any](c *Container, col models.Collection) (T, bool) {
	var v T

	raw, ok, err := c.store.Read(col.Key())
	if err != nil {
		c.logger.Warn("failed to read collection", "collection", col, "error", err)
		return v, false
	}
	if !ok {
		return v, false
	}

	version, present, err := decode(raw, &v)
	if err != nil {
		c.logger.Debug("discarding corrupt entry", "collection", col, "error", err)
		var zero T
		return zero, false
	}
	if version > SchemaVersion {
		c.logger.Debug("decoded entry from a newer schema", "collection", col, "version", version)
	}
	return v, present
}

// set persists v, publishes it, then runs the collection's hook. A failed write publishes nothing.
func set[T any](c *Container, col models.Collection, topic events.Topic[T], v T) error {
	raw, err := encode(v)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", shared.ErrPersistence, col, err)
	}

	if err := c.store.Write(col.Key(), raw); err != nil {
		c.logger.Error("failed to write collection", "collection", col, "error", err)
		if errors.Is(err, shared.ErrPersistence) {
			return err
		}
		return fmt.Errorf("%w: %s: %w", shared.ErrPersistence, col, err)
	}

	events.Publish(c.bus, topic, v)

	if h, ok := c.hooks[col]; ok {
		if err := h(c, v); err != nil {
			return fmt.Errorf("failed to update metrics after %s write: %w", col, err)
		}
	}
	return nil
}
