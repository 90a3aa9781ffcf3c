package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/Black-And-White-Club/progress-engine/app"
	progressdomain "github.com/Black-And-White-Club/progress-engine/app/modules/progress/domain"
	"github.com/Black-And-White-Club/progress-engine/config"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "progress-engine",
		Usage: "player progress aggregation and ranking",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			recomputeCommand(),
			exportCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(c *cli.Context) (*app.App, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return app.NewApp(c.Context, cfg, os.Stderr)
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API and event consumers",
		Action: func(c *cli.Context) error {
			ctx, stop := app.WithShutdownSignals(c.Context)
			defer stop()

			application, err := newApp(c)
			if err != nil {
				return err
			}
			defer application.Close()

			return application.Run(ctx)
		},
	}
}

func recomputeCommand() *cli.Command {
	return &cli.Command{
		Name:  "recompute",
		Usage: "rebuild a player's game summary from raw unlocks and compare it with the stored one",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Required: true},
			&cli.Int64Flag{Name: "game", Required: true},
		},
		Action: func(c *cli.Context) error {
			application, err := newApp(c)
			if err != nil {
				return err
			}
			defer application.Close()

			svc := application.ProgressModule.ProgressService
			player, err := svc.FindPlayer(c.Context, c.String("user"))
			if err != nil {
				return err
			}
			check, err := svc.RecomputePlayerGame(c.Context, player, progressdomain.GameID(c.Int64("game")))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			if err := enc.Encode(check); err != nil {
				return err
			}
			if !check.Agrees {
				return cli.Exit("stored summary disagrees with raw unlocks", 2)
			}
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write a player's completed games as an xlsx workbook",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Required: true},
			&cli.StringFlag{Name: "out", Usage: "output file, defaults to <user>-completed-games.xlsx"},
		},
		Action: func(c *cli.Context) error {
			application, err := newApp(c)
			if err != nil {
				return err
			}
			defer application.Close()

			username := c.String("user")
			out := c.String("out")
			if out == "" {
				out = username + "-completed-games.xlsx"
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()

			if err := application.ProgressModule.ProgressService.ExportCompletedGames(c.Context, username, f); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Wrote %s\n", out)
			return nil
		},
	}
}
