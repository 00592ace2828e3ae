package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	playerservice "github.com/nanashi-new/darts/app/modules/player/application"
	playerdb "github.com/nanashi-new/darts/app/modules/player/infrastructure/repositories"
	"github.com/nanashi-new/darts/app/modules/protocol/parsers"
	"github.com/nanashi-new/darts/app/modules/rating"
	tournamentservice "github.com/nanashi-new/darts/app/modules/tournament/application"
)

func newImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "import one tournament protocol workbook",
		ArgsUsage: "<file.xlsx>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "tournament name (default: from the file name)"},
			&cli.StringFlag{Name: "date", Usage: "tournament date, ISO (default: from the file name)"},
			&cli.StringFlag{Name: "category", Usage: "category code"},
			&cli.StringFlag{Name: "league", Usage: "league code"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one protocol file")
			}
			return withApp(c, func(ctx context.Context, app *application) error {
				report, err := app.tournaments.ImportTournament(ctx, tournamentservice.ImportOptions{
					FilePath:     c.Args().First(),
					Name:         c.String("name"),
					Date:         c.String("date"),
					CategoryCode: c.String("category"),
					LeagueCode:   c.String("league"),
				})
				if err != nil {
					return err
				}
				fmt.Printf("Imported %q (id %d): %d results, %d rows skipped\n",
					report.Name, report.TournamentID, report.Imported, report.Skipped)
				printWarnings(report.Warnings)
				if !report.NormsLoaded {
					fmt.Println("Norms table unavailable: classification points are zero.")
				}
				return nil
			})
		},
	}
}

func newImportFolderCommand() *cli.Command {
	return &cli.Command{
		Name:      "import-folder",
		Usage:     "import every protocol workbook of a folder",
		ArgsUsage: "<dir>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one folder")
			}
			return withApp(c, func(ctx context.Context, app *application) error {
				report, err := app.tournaments.ImportFolder(ctx, c.Args().First())
				if err != nil {
					return err
				}
				for _, file := range report.Files {
					if file.Err != "" {
						fmt.Printf("  FAIL %s: %s\n", file.File, file.Err)
						continue
					}
					fmt.Printf("  ok   %s: tournament %d, %d results\n",
						file.File, file.TournamentID, file.Imported)
				}
				fmt.Printf("%d files: %d succeeded, %d failed\n",
					report.Total, report.Succeeded, report.Failed)
				return nil
			})
		},
	}
}

func newRecalcCommand() *cli.Command {
	return &cli.Command{
		Name:      "recalc",
		Usage:     "recalculate ranks and points from stored scores",
		ArgsUsage: "[tournament-id]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "all", Usage: "recalculate every tournament"},
		},
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, app *application) error {
				var report *tournamentservice.RecalcReport
				var err error
				switch {
				case c.Bool("all"):
					report, err = app.tournaments.RecalculateAll(ctx)
				case c.NArg() == 1:
					var id int64
					id, err = strconv.ParseInt(c.Args().First(), 10, 64)
					if err != nil {
						return fmt.Errorf("invalid tournament id %q", c.Args().First())
					}
					report, err = app.tournaments.RecalculateTournament(ctx, id)
				default:
					return fmt.Errorf("pass a tournament id or --all")
				}
				if err != nil {
					return err
				}
				fmt.Printf("%d tournaments: %d results processed, %d updated\n",
					report.Tournaments, report.Processed, report.Updated)
				printWarnings(report.Warnings)
				for _, msg := range report.Errors {
					fmt.Println("  error: " + msg)
				}
				return nil
			})
		},
	}
}

func ratingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "window", Usage: "tournaments counted per player (default: from config)"},
		&cli.StringFlag{Name: "category", Usage: "category code filter"},
		&cli.StringFlag{Name: "search", Usage: "player name filter"},
	}
}

func ratingOptions(c *cli.Context) rating.Options {
	return rating.Options{
		Window:       c.Int("window"),
		CategoryCode: c.String("category"),
		Search:       c.String("search"),
	}
}

func newRatingCommand() *cli.Command {
	return &cli.Command{
		Name:  "rating",
		Usage: "print the rolling rating table",
		Flags: ratingFlags(),
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, app *application) error {
				rows, err := app.rating.Compute(ctx, ratingOptions(c))
				if err != nil {
					return err
				}
				fmt.Printf("%-6s %-36s %8s %8s\n", "Место", "ФИО", "Очки", "Турниры")
				for _, row := range rows {
					fmt.Printf("%-6d %-36s %8d %8d\n", row.Place, row.FIO, row.Points, row.Tournaments)
				}
				return nil
			})
		},
	}
}

func newExportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "export the rating to a file (.xlsx, .txt or .png)",
		ArgsUsage: "<path>",
		Flags: append(ratingFlags(),
			&cli.StringFlag{Name: "title", Usage: "table title"}),
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one output path")
			}
			return withApp(c, func(ctx context.Context, app *application) error {
				path := c.Args().First()
				if err := app.rating.ExportRating(ctx, path, c.String("title"), ratingOptions(c)); err != nil {
					return err
				}
				fmt.Println("Exported " + path)
				return nil
			})
		},
	}
}

func newExportBatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "export-batch",
		Usage: "export all ratings and tournament tables into a dated folder",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "exports", Usage: "base export folder"},
		},
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, app *application) error {
				report, err := app.rating.ExportBatch(ctx, c.String("dir"))
				if err != nil {
					return err
				}
				fmt.Printf("Exported %d ratings and %d tournament tables to %s\n",
					report.Ratings, report.Results, report.Dir)
				printWarnings(report.Warnings)
				return nil
			})
		},
	}
}

func newPlayersCommand() *cli.Command {
	return &cli.Command{
		Name:  "players",
		Usage: "list players",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "search", Usage: "name/club/coach substring"},
			&cli.BoolFlag{Name: "duplicates", Usage: "show possible duplicate groups instead"},
		},
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, app *application) error {
				if c.Bool("duplicates") {
					groups, err := app.players.FindPossibleDuplicates(ctx)
					if err != nil {
						return err
					}
					for _, group := range groups {
						fmt.Println(group.NormalizedFIO + ":")
						for _, player := range group.Players {
							fmt.Printf("  id %d: %s%s\n", player.ID, player.FullName(), birthSuffix(player.BirthDate))
						}
					}
					if len(groups) == 0 {
						fmt.Println("No possible duplicates found.")
					}
					return nil
				}

				var err error
				var players []*playerdb.Player
				if term := c.String("search"); term != "" {
					players, err = app.players.Search(ctx, term)
				} else {
					players, err = app.players.List(ctx)
				}
				if err != nil {
					return err
				}
				for _, player := range players {
					fmt.Printf("%6d  %s%s\n", player.ID, player.FullName(), birthSuffix(player.BirthDate))
				}
				return nil
			})
		},
	}
}

func newTournamentsCommand() *cli.Command {
	return &cli.Command{
		Name:  "tournaments",
		Usage: "list tournaments",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "delete", Usage: "delete a tournament and its results by id"},
		},
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, app *application) error {
				if id := c.Int64("delete"); id != 0 {
					if err := app.tournaments.Delete(ctx, id); err != nil {
						return err
					}
					fmt.Printf("Deleted tournament %d\n", id)
					return nil
				}
				tournaments, err := app.tournaments.List(ctx)
				if err != nil {
					return err
				}
				for _, tournament := range tournaments {
					date := tournament.DateString()
					if date == "" {
						date = "----------"
					}
					fmt.Printf("%6d  %s  %s\n", tournament.ID, date, tournament.Name)
				}
				return nil
			})
		},
	}
}

func newMergeCommand() *cli.Command {
	return &cli.Command{
		Name:      "merge",
		Usage:     "merge a duplicate player into a primary one",
		ArgsUsage: "<primary-id> <duplicate-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "strategy",
				Value: string(playerservice.PreferPrimary),
				Usage: "result collision strategy: prefer_primary or prefer_duplicate",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("expected a primary and a duplicate player id")
			}
			primaryID, err := strconv.ParseInt(c.Args().Get(0), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid primary id %q", c.Args().Get(0))
			}
			duplicateID, err := strconv.ParseInt(c.Args().Get(1), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid duplicate id %q", c.Args().Get(1))
			}
			return withApp(c, func(ctx context.Context, app *application) error {
				report, err := app.players.Merge(ctx, primaryID, duplicateID,
					playerservice.MergeStrategy(c.String("strategy")))
				if err != nil {
					return err
				}
				fmt.Printf("Merged player %d into %d: %d results moved, %d duplicate results dropped\n",
					report.DuplicateID, report.PrimaryID,
					report.ResultsTransferred, report.DuplicatesRemoved)
				return nil
			})
		},
	}
}

func newProfileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "manage import profiles for non-standard protocol headers",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list saved profiles",
				Action: func(c *cli.Context) error {
					return withApp(c, func(ctx context.Context, app *application) error {
						list, err := app.profiles.List()
						if err != nil {
							return err
						}
						for _, profile := range list {
							fmt.Println(profile.Name + ":")
							for field, aliases := range profile.Aliases {
								fmt.Printf("  %s = %s\n", field, strings.Join(aliases, ", "))
							}
						}
						return nil
					})
				},
			},
			{
				Name:      "save",
				Usage:     "save a profile; --map field=Header, repeatable",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "map", Usage: "column mapping, e.g. --map fio=Спортсмен"},
					&cli.StringSliceFlag{Name: "required", Usage: "override required fields"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("expected a profile name")
					}
					profile := parsers.ImportProfile{
						Name:     c.Args().First(),
						Required: c.StringSlice("required"),
						Aliases:  make(map[string][]string),
					}
					for _, mapping := range c.StringSlice("map") {
						field, header, ok := strings.Cut(mapping, "=")
						if !ok {
							return fmt.Errorf("invalid mapping %q, expected field=Header", mapping)
						}
						profile.Aliases[field] = append(profile.Aliases[field], header)
					}
					return withApp(c, func(ctx context.Context, app *application) error {
						return app.profiles.Save(profile)
					})
				},
			},
			{
				Name:      "delete",
				Usage:     "delete a profile",
				ArgsUsage: "<name>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("expected a profile name")
					}
					return withApp(c, func(ctx context.Context, app *application) error {
						return app.profiles.Delete(c.Args().First())
					})
				},
			},
		},
	}
}

func newAuditCommand() *cli.Command {
	return &cli.Command{
		Name:  "audit",
		Usage: "show the operation audit log",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Usage: "filter by event type"},
			&cli.StringFlag{Name: "query", Usage: "filter by title/details substring"},
			&cli.StringFlag{Name: "export", Usage: "write the log to a text file instead"},
		},
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, app *application) error {
				if path := c.String("export"); path != "" {
					if err := app.auditor.ExportTxt(ctx, path, c.String("type"), c.String("query")); err != nil {
						return err
					}
					fmt.Println("Exported " + path)
					return nil
				}
				events, err := app.auditor.List(ctx, c.String("type"), c.String("query"))
				if err != nil {
					return err
				}
				for _, event := range events {
					fmt.Printf("%s  %-18s %-5s %s\n",
						event.CreatedAt.Format("2006-01-02 15:04:05"),
						event.EventType, event.Level, event.Title)
					if event.Details != "" {
						fmt.Println("    " + event.Details)
					}
				}
				return nil
			})
		},
	}
}

func printWarnings(warnings []string) {
	for _, warning := range warnings {
		fmt.Println("  warning: " + warning)
	}
}

func birthSuffix(birthDate *string) string {
	if birthDate == nil {
		return ""
	}
	return " (" + *birthDate + ")"
}
