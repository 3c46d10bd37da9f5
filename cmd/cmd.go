// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/desertthunder/rba/internal/formatter"
	"github.com/desertthunder/rba/internal/models"
	"github.com/urfave/cli/v3"
)

// setupCommand creates the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml if missing, initialize the database and run migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// migrateCommand manages the database schema.
func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage database schema migrations",
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "Apply pending migrations",
				Action: r.MigrateUp,
			},
			{
				Name:  "down",
				Usage: "Roll back the most recent migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "steps",
						Aliases: []string{"n"},
						Usage:   "Number of migrations to roll back",
						Value:   1,
					},
				},
				Action: r.MigrateDown,
			},
			{
				Name:   "status",
				Usage:  "List migrations and when they were applied",
				Action: r.MigrateStatus,
			},
		},
	}
}

// initCommand writes default collections.
func initCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "init",
		Usage:  "Create the default profile, preferences and metrics if they are missing",
		Action: r.Init,
	}
}

// showCommand prints stored collections.
func showCommand(r *Runner) *cli.Command {
	names := make([]string, 0, len(models.Collections))
	for _, c := range models.Collections {
		names = append(names, c.String())
	}

	return &cli.Command{
		Name:      "show",
		Usage:     "Print a collection as JSON (" + strings.Join(names, ", ") + " or all)",
		ArgsUsage: "<collection>",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "collection",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Show,
	}
}

// profileCommand handles profile operations
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Profile operations",
		Commands: []*cli.Command{
			{
				Name:  "update",
				Usage: "Update profile fields",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "Display name",
					},
					&cli.StringFlag{
						Name:  "email",
						Usage: "Contact email",
					},
				},
				Action: r.ProfileUpdate,
			},
		},
	}
}

// prefsCommand handles job search preference operations
func prefsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "prefs",
		Aliases: []string{"preferences"},
		Usage:   "Job search preference operations",
		Commands: []*cli.Command{
			{
				Name:  "update",
				Usage: "Update preference fields; list flags replace the stored list",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "title",
						Usage: "Desired job title",
					},
					&cli.StringFlag{
						Name:  "location",
						Usage: "Preferred location",
					},
					&cli.BoolFlag{
						Name:  "remote",
						Usage: "Prefer remote roles",
					},
					&cli.StringFlag{
						Name:  "salary",
						Usage: "Salary range",
					},
					&cli.StringFlag{
						Name:  "level",
						Usage: "Experience level",
					},
					&cli.StringSliceFlag{
						Name:  "industry",
						Usage: "Industry (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "skill",
						Usage: "Skill (repeatable)",
					},
				},
				Action: r.PrefsUpdate,
			},
		},
	}
}

// hydrateCommand imports an analysis payload.
func hydrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "hydrate",
		Usage: "Import a resume analysis from a JSON or YAML file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Path to the payload (.json, .yaml, .yml)",
				Required: true,
			},
		},
		Action: r.Hydrate,
	}
}

// jobsCommand handles saved job operations
func jobsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "jobs",
		Usage: "Saved job operations",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Save a job unless the same id or title and company is already saved",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Job ID"},
					&cli.StringFlag{Name: "title", Usage: "Job title", Required: true},
					&cli.StringFlag{Name: "company", Usage: "Company name", Required: true},
					&cli.StringFlag{Name: "location", Usage: "Job location"},
					&cli.BoolFlag{Name: "remote", Usage: "Remote role"},
					&cli.StringFlag{Name: "level", Usage: "Experience level"},
					&cli.StringSliceFlag{Name: "skill", Usage: "Required skill (repeatable)"},
					&cli.StringFlag{Name: "url", Usage: "Posting URL"},
					&cli.StringFlag{Name: "salary", Usage: "Salary"},
					&cli.StringFlag{Name: "description", Usage: "Description"},
					&cli.StringFlag{Name: "posted", Usage: "Posted date"},
				},
				Action: r.JobsAdd,
			},
			{
				Name:  "import",
				Usage: "Save every job in a JSON or YAML file, skipping duplicates",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the job list (.json, .yaml, .yml)",
						Required: true,
					},
				},
				Action: r.JobsImport,
			},
			{
				Name:  "rank",
				Usage: "Rank saved jobs against the resume and preferences",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format (" + formatNames() + ")",
						Value: string(formatter.Text),
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: stdout)",
					},
				},
				Action: r.JobsRank,
			},
		},
	}
}

// metricsCommand prints the derived metrics.
func metricsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "metrics",
		Usage: "Show analysis and job metrics",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Metrics,
	}
}

// clearCommand deletes every collection.
func clearCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Delete every stored collection",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "yes",
				Usage: "Confirm deletion",
			},
		},
		Action: r.Clear,
	}
}

// tuiCommand returns the top-level TUI command for the interactive dashboard.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive dashboard",
		Action:  r.TUI,
	}
}

func formatNames() string {
	names := make([]string, 0, len(formatter.Formats))
	for _, f := range formatter.Formats {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}
