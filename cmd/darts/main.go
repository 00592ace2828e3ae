// Command darts manages the darts tournament results database: protocol
// imports, recalculation, ratings, exports, player merges and the audit log.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/nanashi-new/darts/app/modules/audit"
	"github.com/nanashi-new/darts/app/modules/classify"
	playerservice "github.com/nanashi-new/darts/app/modules/player/application"
	playerdb "github.com/nanashi-new/darts/app/modules/player/infrastructure/repositories"
	"github.com/nanashi-new/darts/app/modules/protocol/parsers"
	"github.com/nanashi-new/darts/app/modules/protocol/profiles"
	"github.com/nanashi-new/darts/app/modules/rating"
	tournamentservice "github.com/nanashi-new/darts/app/modules/tournament/application"
	"github.com/nanashi-new/darts/config"
	"github.com/nanashi-new/darts/db/bundb"
)

func main() {
	app := &cli.App{
		Name:  "darts",
		Usage: "darts tournament results database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "config.yaml",
				Usage: "path to the configuration file",
			},
		},
		Commands: []*cli.Command{
			newImportCommand(),
			newImportFolderCommand(),
			newRecalcCommand(),
			newRatingCommand(),
			newExportCommand(),
			newExportBatchCommand(),
			newPlayersCommand(),
			newTournamentsCommand(),
			newMergeCommand(),
			newProfileCommand(),
			newAuditCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// application wires the services behind every command.
type application struct {
	cfg         *config.Config
	dbs         *bundb.DBService
	auditor     *audit.Service
	players     *playerservice.Service
	tournaments *tournamentservice.Service
	rating      *rating.Service
	profiles    *profiles.FileStore
	logger      *slog.Logger
}

func newApplication(ctx context.Context, configPath string) (*application, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	dbs, err := bundb.NewDBService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	profileStore := profiles.NewFileStore(cfg.ImportProfilesPath())
	detector := &parsers.Detector{}
	if list, err := profileStore.List(); err == nil {
		detector.Profiles = list
	} else {
		logger.Warn("failed to load import profiles", slog.Any("error", err))
	}

	auditor := audit.NewService(dbs.GetDB(), logger)
	rules := playerservice.NewFileRuleStore(cfg.MatchRulesPath())
	players := playerservice.NewService(
		dbs.GetDB(), dbs.PlayerDB, dbs.ResultDB,
		rules, &terminalResolver{}, auditor, logger)
	tournaments := tournamentservice.NewService(
		dbs.GetDB(), dbs.TournamentDB, dbs.ResultDB, players,
		classify.NewLoader(), cfg.NormsPath(), detector, auditor, logger)
	ratingSvc := rating.NewService(
		dbs.GetDB(), dbs.TournamentDB, dbs.ResultDB,
		cfg.Rating.Window, auditor, logger)

	return &application{
		cfg:         cfg,
		dbs:         dbs,
		auditor:     auditor,
		players:     players,
		tournaments: tournaments,
		rating:      ratingSvc,
		profiles:    profileStore,
		logger:      logger,
	}, nil
}

func (a *application) Close() {
	if err := a.dbs.Close(); err != nil {
		a.logger.Warn("failed to close database", slog.Any("error", err))
	}
}

// withApp builds the application for one command invocation.
func withApp(c *cli.Context, fn func(ctx context.Context, app *application) error) error {
	ctx := c.Context
	app, err := newApplication(ctx, c.String("config"))
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(ctx, app)
}

// terminalResolver resolves ambiguous player matches interactively on the
// terminal.
type terminalResolver struct{}

func (r *terminalResolver) Resolve(_ context.Context, fio, birthToken string, candidates []*playerdb.Player) (playerservice.MatchDecision, error) {
	fmt.Printf("Ambiguous player %q", fio)
	if birthToken != "" {
		fmt.Printf(" (born %s)", birthToken)
	}
	fmt.Println(":")
	for i, candidate := range candidates {
		birth := ""
		if candidate.BirthDate != nil {
			birth = ", born " + *candidate.BirthDate
		}
		fmt.Printf("  [%d] %s%s (id %d)\n", i+1, candidate.FullName(), birth, candidate.ID)
	}
	fmt.Print("Select a number, [n]ew player or [c]ancel import: ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return playerservice.MatchDecision{}, err
	}
	choice := strings.ToLower(strings.TrimSpace(line))

	switch choice {
	case "n":
		return playerservice.MatchDecision{Action: playerservice.MatchCreate}, nil
	case "c", "":
		return playerservice.MatchDecision{Action: playerservice.MatchCancel}, nil
	}
	index, err := strconv.Atoi(choice)
	if err != nil || index < 1 || index > len(candidates) {
		return playerservice.MatchDecision{Action: playerservice.MatchCancel}, nil
	}

	fmt.Print("Remember this choice? [y/N]: ")
	line, err = reader.ReadString('\n')
	if err != nil {
		return playerservice.MatchDecision{}, err
	}
	remember := strings.ToLower(strings.TrimSpace(line)) == "y"

	return playerservice.MatchDecision{
		Action:   playerservice.MatchSelect,
		PlayerID: candidates[index-1].ID,
		Remember: remember,
	}, nil
}
