// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// listCommand prints the library's playlist listing.
func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List playlists in the library",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "library",
				Aliases: []string{"l"},
				Usage:   "Path to the library XML file (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "csv",
				Usage: "Output as CSV instead of plain text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the listing to a file instead of stdout",
			},
		},
		Action: r.List,
	}
}

// exportCommand runs the playlist and track export.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export playlists and their tracks to the destination",
		ArgsUsage: "[playlist names]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "library",
				Aliases: []string{"l"},
				Usage:   "Path to the library XML file (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:    "playlist",
				Aliases: []string{"p"},
				Usage:   "Playlist to export (repeatable, adds to positional names)",
			},
			&cli.StringFlag{
				Name:    "dest",
				Aliases: []string{"d"},
				Usage:   "Destination directory (overrides config)",
			},
			&cli.BoolFlag{
				Name:    "all",
				Aliases: []string{"a"},
				Usage:   "Export every playlist not on the ignore list",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Copy every track even when the destination looks current",
			},
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"n"},
				Usage:   "Report what would change without writing anything",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Suppress per-step progress output",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Parallel copy workers (overrides config)",
			},
		},
		Action: r.Export,
	}
}

// plexCommand uploads exported playlists to a Plex server.
func plexCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "plex",
		Usage: "Upload exported playlists to a Plex server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Playlist directory to upload (defaults to the export destination)",
			},
			&cli.StringFlag{
				Name:  "url",
				Usage: "Plex server URL (overrides config)",
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "Plex auth token (overrides config)",
			},
		},
		Action: r.Plex,
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and the run history database",
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

// historyCommand shows past export runs.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show past export runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "dry-runs",
				Usage: "Show only dry runs",
			},
		},
		Action: r.History,
	}
}

// tuiCommand returns the top-level TUI command for interactive exports.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for playlist export",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "library",
				Aliases: []string{"l"},
				Usage:   "Path to the library XML file (overrides config)",
			},
		},
		Action: r.TUI,
	}
}
