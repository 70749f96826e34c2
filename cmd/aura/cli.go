package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/aura/internal/config"
	"github.com/hpungsan/aura/internal/errors"
	"github.com/hpungsan/aura/internal/ops"
	"github.com/hpungsan/aura/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "aura",
		Usage:   "Binary session memory for coding agents",
		Version: Version,
		Commands: []*cli.Command{
			tabletCmd(db, cfg),
			capsuleCmd(db, cfg),
			inspectCmd(db),
			sessionsCmd(db),
			rescanCmd(db, cfg),
			deleteCmd(db),
			healthCmd(db, cfg),
			cleanupCmd(db, cfg),
			digestCmd(db, cfg),
			sizesCmd(db),
			exportCmd(db),
			serveCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// tabletCmd groups tablet subcommands.
func tabletCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "tablet",
		Usage: "Work with tablet (.auratab) session files",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a new tablet",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Session title (required)"},
					&cli.StringFlag{Name: "summary", Aliases: []string{"s"}, Usage: "Session summary"},
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "File stem (defaults to a date-based name)"},
					&cli.StringFlag{Name: "author", Usage: "Session author"},
					&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.CreateTablet(db, cfg, ops.CreateTabletInput{
						Dir:     cfg.SessionsDir,
						Name:    c.String("name"),
						Title:   c.String("title"),
						Summary: c.String("summary"),
						Author:  c.String("author"),
						Tags:    parseTags(c.String("tags")),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "add-entry",
				Usage:     "Append a file-change entry to a tablet",
				ArgsUsage: "<id-or-path>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Repository-relative file path (required)"},
					&cli.StringFlag{Name: "diff", Aliases: []string{"d"}, Usage: "What changed (reads stdin when piped and omitted)"},
					&cli.StringFlag{Name: "notes", Usage: "Free-form notes"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewInvalidRequest("tablet id or path is required"))
					}
					diff := c.String("diff")
					if diff == "" && stdinHasData() {
						var err error
						diff, err = readStdin()
						if err != nil {
							return outputError(errors.NewInternal(err))
						}
					}
					output, err := ops.AddEntry(db, cfg, ops.AddEntryInput{
						Target: c.Args().First(),
						Path:   c.String("path"),
						Diff:   diff,
						Notes:  c.String("notes"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// capsuleCmd groups capsule subcommands.
func capsuleCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "capsule",
		Usage: "Work with capsule (.auractx) session files",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a new capsule",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Usage: "Project name (required)"},
					&cli.StringFlag{Name: "summary", Aliases: []string{"s"}, Usage: "Session summary"},
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "File stem"},
					&cli.StringFlag{Name: "author", Usage: "Session author"},
					&cli.StringFlag{Name: "branch", Aliases: []string{"b"}, Usage: "VCS branch"},
					&cli.StringFlag{Name: "objective", Aliases: []string{"o"}, Usage: "Initial task objective"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.CreateCapsule(db, cfg, ops.CreateCapsuleInput{
						Dir:       cfg.SessionsDir,
						Name:      c.String("name"),
						Project:   c.String("project"),
						Summary:   c.String("summary"),
						Author:    c.String("author"),
						Branch:    c.String("branch"),
						Objective: c.String("objective"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "set-section",
				Usage:     "Set a named section in a capsule",
				ArgsUsage: "<id-or-path>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Section name (required)"},
					&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Value: "text", Usage: "Payload kind: text|json|binary"},
					&cli.StringFlag{Name: "content", Aliases: []string{"c"}, Usage: "Section content (reads stdin when piped and omitted)"},
					&cli.BoolFlag{Name: "append", Usage: "Keep existing sections with the same name"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewInvalidRequest("capsule id or path is required"))
					}
					content := c.String("content")
					if content == "" && stdinHasData() {
						var err error
						content, err = readStdin()
						if err != nil {
							return outputError(errors.NewInternal(err))
						}
					}
					output, err := ops.SetSection(db, cfg, ops.SetSectionInput{
						Target:  c.Args().First(),
						Name:    c.String("name"),
						Kind:    c.String("kind"),
						Content: content,
						Append:  c.Bool("append"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "export",
				Usage:     "Archive a capsule into a new tablet",
				ArgsUsage: "<id-or-path>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "File stem for the new tablet"},
					&cli.BoolFlag{Name: "delete", Usage: "Remove the capsule after a successful export"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewInvalidRequest("capsule id or path is required"))
					}
					output, err := ops.ExportCapsule(db, cfg, ops.ExportCapsuleInput{
						Target: c.Args().First(),
						Dir:    cfg.SessionsDir,
						Name:   c.String("name"),
						Delete: c.Bool("delete"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// inspectCmd creates the inspect command.
func inspectCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Decode and display a session file (dispatches on magic bytes)",
		ArgsUsage: "<id-or-path>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("id or path is required"))
			}
			output, err := ops.InspectTarget(db, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// sessionsCmd creates the sessions list command.
func sessionsCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "sessions",
		Usage: "List cataloged sessions, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Usage: "Filter: tablet|capsule"},
			&cli.StringFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Filter by tag"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum records"},
			&cli.IntFlag{Name: "offset", Usage: "Records to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(db, ops.ListInput{
				Kind:   c.String("kind"),
				Tag:    c.String("tag"),
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// rescanCmd creates the rescan command.
func rescanCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "rescan",
		Usage: "Reconcile the catalog with the sessions directory",
		Action: func(c *cli.Context) error {
			output, err := ops.Rescan(db, cfg.SessionsDir)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a session file and its catalog row",
		ArgsUsage: "<id-or-path>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("id or path is required"))
			}
			if err := ops.Delete(db, c.Args().First()); err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"deleted": true})
		},
	}
}

// healthCmd creates the health command.
func healthCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "health",
		Usage:     "Check whether a session needs to be exported or refreshed",
		ArgsUsage: "<id-or-path>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("id or path is required"))
			}
			output, err := ops.Health(db, cfg, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// cleanupCmd creates the cleanup command.
func cleanupCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "cleanup",
		Usage: "Delete temporary sessions older than the auto-delete window",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "Report candidates without deleting"},
			&cli.BoolFlag{Name: "if-due", Usage: "Only run when the cleanup interval has elapsed"},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("if-due") {
				due, err := ops.CleanupDue(db, cfg)
				if err != nil {
					return outputError(err)
				}
				if !due {
					return outputJSON(map[string]any{"ran": false, "reason": "not due"})
				}
			}
			output, err := ops.Cleanup(db, cfg, c.Bool("dry-run"))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// digestCmd creates the digest command.
func digestCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "digest",
		Usage: "Build a deduplicated context digest from recent tablets",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "max-tablets", Usage: "How many recent tablets to read"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Digest(db, cfg, c.Int("max-tablets"))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// sizesCmd creates the sizes command.
func sizesCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "sizes",
		Usage: "Report storage usage across the catalog",
		Action: func(c *cli.Context) error {
			output, err := ops.Sizes(db)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// exportCmd creates the JSON export command.
func exportCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Dump a session file's decoded contents as JSON",
		ArgsUsage: "<id-or-path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output path (defaults to <session>.json)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("id or path is required"))
			}
			output, err := ops.ExportJSON(db, c.Args().First(), c.String("out"))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// serveCmd creates the web viewer command.
func serveCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the read-only session viewer",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8700, Usage: "Port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(db, cfg, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// outputJSON prints indented JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if auraErr, ok := err.(*errors.AuraError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", auraErr.Code, auraErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// parseTags splits a comma-separated string into a slice of tags.
func parseTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
