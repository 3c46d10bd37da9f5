package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rba/internal/events"
	"github.com/desertthunder/rba/internal/models"
	"github.com/desertthunder/rba/internal/repositories"
	"github.com/desertthunder/rba/internal/scoring"
	"github.com/desertthunder/rba/internal/shared"
	"github.com/desertthunder/rba/internal/state"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The state container is opened lazily on the first command that needs it, so setup can run before a database exists.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	store      state.Store
	db         *sql.DB
	bus        *events.Bus
	container  *state.Container
	engine     *scoring.Engine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	Store      state.Store
	Engine     *scoring.Engine
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Engine == nil {
		opts.Engine = scoring.NewSeededEngine(opts.Config.Scoring.Seed)
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		store:      opts.Store,
		engine:     opts.Engine,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, migrateCommand, initCommand, showCommand, profileCommand, prefsCommand, hydrateCommand,
		jobsCommand, metricsCommand, clearCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the runner's logger. Must be called before the container is opened.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// open builds the state container, opening the configured database unless a store was injected.
func (r *Runner) open(cmd *cli.Command) (*state.Container, error) {
	if r.container != nil {
		return r.container, nil
	}

	if cmd != nil && cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if r.store == nil {
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open database %s: %w", r.config.Database.Path, err)
		}
		r.db = db
		r.store = repositories.NewCollectionRepository(db)
		r.logger.Debug("opened database", "path", r.config.Database.Path)
	}

	r.bus = events.NewBus(events.BusOpts{Logger: r.logger, MaxDepth: r.config.Events.MaxDepth})
	r.container = state.New(r.store, r.bus, state.Opts{Logger: r.logger})
	r.watch()
	return r.container, nil
}

// watch logs every collection update at debug level.
func (r *Runner) watch() {
	logUpdate := func(name string) func() {
		return func() { r.logger.Debug("collection updated", "event", name) }
	}
	events.On(r.bus, events.ProfileUpdated, logUpdate(events.ProfileUpdated.Name()))
	events.On(r.bus, events.ResumeUpdated, logUpdate(events.ResumeUpdated.Name()))
	events.On(r.bus, events.PreferencesUpdated, logUpdate(events.PreferencesUpdated.Name()))
	events.On(r.bus, events.AnalysisUpdated, logUpdate(events.AnalysisUpdated.Name()))
	events.Subscribe(r.bus, events.JobsUpdated, func(jobs []models.Job) error {
		r.logger.Debug("collection updated", "event", events.JobsUpdated.Name(), "jobs", len(jobs))
		return nil
	})
	events.Subscribe(r.bus, events.MetricsUpdated, func(m models.Metrics) error {
		r.logger.Debug("collection updated", "event", events.MetricsUpdated.Name(),
			"analyses", m.TotalAnalyses, "average", m.AverageATSScore, "jobs", m.JobsFound)
		return nil
	})
}

// Close releases the database opened by the runner, if any.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
