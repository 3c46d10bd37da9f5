package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/rba/internal/formatter"
	"github.com/desertthunder/rba/internal/models"
	"github.com/desertthunder/rba/internal/payload"
	"github.com/desertthunder/rba/internal/scoring"
	"github.com/desertthunder/rba/internal/shared"
	"github.com/urfave/cli/v3"
)

// Init creates the default collections that are missing.
func (r *Runner) Init(ctx context.Context, cmd *cli.Command) error {
	c, err := r.open(cmd)
	if err != nil {
		return err
	}

	if err := c.Init(); err != nil {
		return fmt.Errorf("failed to initialize state: %w", err)
	}

	r.logger.Info("state initialized")
	return r.writePlain("✓ State initialized\n")
}

// Show prints one collection, or all of them keyed by name.
func (r *Runner) Show(ctx context.Context, cmd *cli.Command) error {
	name := strings.ToLower(strings.TrimSpace(cmd.StringArg("collection")))
	if name == "" {
		return fmt.Errorf("%w: collection name is required", shared.ErrMissingArgument)
	}

	c, err := r.open(cmd)
	if err != nil {
		return err
	}

	values := map[models.Collection]func() any{
		models.ProfileCollection:     func() any { return c.Profile() },
		models.ResumeCollection:      func() any { return nullable(c.LookupResume()) },
		models.PreferencesCollection: func() any { return c.Preferences() },
		models.AnalysisCollection:    func() any { return nullable(c.LookupAnalysis()) },
		models.JobsCollection:        func() any { return c.Jobs() },
		models.MetricsCollection:     func() any { return c.Metrics() },
	}

	if name == "all" {
		all := make(map[string]any, len(values))
		for _, col := range models.Collections {
			all[col.String()] = values[col]()
		}
		return r.writeJSON(all, cmd.Bool("pretty"))
	}

	col, ok := models.ParseCollection(name)
	if !ok {
		return fmt.Errorf("%w: unknown collection %q", shared.ErrInvalidArgument, name)
	}
	return r.writeJSON(values[col](), cmd.Bool("pretty"))
}

// ProfileUpdate merges the provided flags into the profile.
func (r *Runner) ProfileUpdate(ctx context.Context, cmd *cli.Command) error {
	var patch models.ProfilePatch
	if cmd.IsSet("name") {
		patch.Name = models.StringPtr(cmd.String("name"))
	}
	if cmd.IsSet("email") {
		patch.Email = models.StringPtr(cmd.String("email"))
	}
	if patch == (models.ProfilePatch{}) {
		return fmt.Errorf("%w: provide --name or --email", shared.ErrMissingArgument)
	}

	c, err := r.open(cmd)
	if err != nil {
		return err
	}

	profile, err := c.UpdateProfile(patch)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return r.writeJSON(profile, true)
}

// PrefsUpdate merges the provided flags into the preferences.
func (r *Runner) PrefsUpdate(ctx context.Context, cmd *cli.Command) error {
	var (
		patch models.PreferencesPatch
		set   bool
	)
	for flag, dst := range map[string]**string{
		"title":    &patch.JobTitle,
		"location": &patch.Location,
		"salary":   &patch.SalaryRange,
		"level":    &patch.ExperienceLevel,
	} {
		if cmd.IsSet(flag) {
			*dst = models.StringPtr(cmd.String(flag))
			set = true
		}
	}
	if cmd.IsSet("remote") {
		patch.Remote = models.BoolPtr(cmd.Bool("remote"))
		set = true
	}
	if cmd.IsSet("industry") {
		patch.Industries = nonNil(cmd.StringSlice("industry"))
		set = true
	}
	if cmd.IsSet("skill") {
		patch.Skills = nonNil(cmd.StringSlice("skill"))
		set = true
	}
	if !set {
		return fmt.Errorf("%w: no preference flags provided", shared.ErrMissingArgument)
	}

	c, err := r.open(cmd)
	if err != nil {
		return err
	}

	prefs, err := c.UpdatePreferences(patch)
	if err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}
	return r.writeJSON(prefs, true)
}

// Hydrate imports an analysis payload file.
func (r *Runner) Hydrate(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("file")

	p, err := payload.LoadHydration(path)
	if err != nil {
		return err
	}

	if p.IsEmpty() {
		r.logger.Warn("payload has no resume name or score, nothing imported", "file", path)
		return nil
	}

	c, err := r.open(cmd)
	if err != nil {
		return err
	}

	if err := c.Hydrate(p); err != nil {
		return fmt.Errorf("failed to hydrate from %s: %w", path, err)
	}

	m := c.Metrics()
	r.writePlain("✓ Imported %s\n", path)
	if p.ATSScore != nil {
		r.writePlain("ATS score: %d (%s)\n", *p.ATSScore, scoring.Label(*p.ATSScore))
	}
	return r.writePlain("Analyses: %d, average ATS score: %.1f\n", m.TotalAnalyses, m.AverageATSScore)
}

// JobsAdd saves a job from flags.
func (r *Runner) JobsAdd(ctx context.Context, cmd *cli.Command) error {
	job := models.Job{
		ID:              cmd.String("id"),
		Title:           strings.TrimSpace(cmd.String("title")),
		Company:         strings.TrimSpace(cmd.String("company")),
		Location:        cmd.String("location"),
		ExperienceLevel: cmd.String("level"),
		Skills:          cmd.StringSlice("skill"),
		URL:             cmd.String("url"),
		Salary:          cmd.String("salary"),
		Description:     cmd.String("description"),
		PostedDate:      cmd.String("posted"),
	}
	if cmd.IsSet("remote") {
		job.Remote = models.BoolPtr(cmd.Bool("remote"))
	}
	if job.Title == "" || job.Company == "" {
		return fmt.Errorf("%w: --title and --company must not be empty", shared.ErrInvalidArgument)
	}

	c, err := r.open(cmd)
	if err != nil {
		return err
	}

	added, err := c.AddJob(job)
	if err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}
	if !added {
		return r.writePlain("Already saved: %s at %s\n", job.Title, job.Company)
	}
	return r.writePlain("✓ Saved %s at %s (%d jobs)\n", job.Title, job.Company, c.Metrics().JobsFound)
}

// JobsImport saves every job in a payload file, skipping duplicates.
func (r *Runner) JobsImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("file")

	jobs, err := payload.LoadJobs(path)
	if err != nil {
		return err
	}

	c, err := r.open(cmd)
	if err != nil {
		return err
	}

	added := 0
	for _, job := range jobs {
		ok, err := c.AddJob(job)
		if err != nil {
			return fmt.Errorf("failed to save %s at %s: %w", job.Title, job.Company, err)
		}
		if ok {
			added++
		}
	}

	r.logger.Info("imported jobs", "file", path, "added", added, "skipped", len(jobs)-added)
	return r.writePlain("✓ Imported %d of %d jobs (%d duplicates skipped)\n", added, len(jobs), len(jobs)-added)
}

// JobsRank scores the saved jobs and prints or writes them in the requested format.
func (r *Runner) JobsRank(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	c, err := r.open(cmd)
	if err != nil {
		return err
	}

	var resume *models.Resume
	if res, ok := c.LookupResume(); ok {
		resume = &res
	}
	prefs := c.Preferences()
	ranked := r.engine.Rank(c.Jobs(), resume, &prefs)

	if output := cmd.String("output"); output != "" {
		path, err := formatter.WriteExport(ranked, format, output)
		if err != nil {
			return err
		}
		r.logger.Info("ranking exported", "path", path, "jobs", len(ranked))
		return r.writePlain("✓ Ranking written to %s\n", path)
	}

	data, err := formatter.Export(ranked, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Metrics prints the derived metrics.
func (r *Runner) Metrics(ctx context.Context, cmd *cli.Command) error {
	c, err := r.open(cmd)
	if err != nil {
		return err
	}

	m := c.Metrics()
	if cmd.Bool("json") {
		return r.writeJSON(m, true)
	}

	last := "never"
	if m.LastAnalysisDate != nil {
		last = m.LastAnalysisDate.Local().Format(time.RFC1123)
	}
	resume := "no"
	if m.ResumeUploaded {
		resume = "yes"
	}

	r.writePlainHeader("Metrics")
	r.writePlain("Resume uploaded:   %s\n", resume)
	r.writePlain("Total analyses:    %d (%d scored)\n", m.TotalAnalyses, m.ScoredAnalyses)
	r.writePlain("Average ATS score: %.1f\n", m.AverageATSScore)
	r.writePlain("Last analysis:     %s\n", last)
	return r.writePlain("Jobs saved:        %d\n", m.JobsFound)
}

// Clear deletes every collection.
func (r *Runner) Clear(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: pass --yes to delete all stored data", shared.ErrMissingArgument)
	}

	c, err := r.open(cmd)
	if err != nil {
		return err
	}

	if err := c.ClearAll(); err != nil {
		return fmt.Errorf("failed to clear state: %w", err)
	}
	return r.writePlain("✓ All collections cleared\n")
}

func nullable[T any](v T, ok bool) any {
	if !ok {
		return nil
	}
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

