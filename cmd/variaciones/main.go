package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dileroc6/analisis-variaciones-felinos/internal/config"
	"github.com/dileroc6/analisis-variaciones-felinos/internal/notify"
	"github.com/dileroc6/analisis-variaciones-felinos/internal/pipeline"
	"github.com/dileroc6/analisis-variaciones-felinos/internal/schedule"
	"github.com/dileroc6/analisis-variaciones-felinos/internal/store"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "variaciones",
		Usage: "compute periodic SEO metric variations per URL and publish them to the shared report table",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: config.DefaultConfigPath,
				Usage: "path to the pipeline config file",
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			guardCommand(),
			notifyCommand(),
		},
		DefaultCommand: "run",
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "execute one pipeline run: read sources, compute variations, replace the report table",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "store",
				Usage: "override the tabular store path (sqlite file or CSV directory)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "compute and print the report as CSV without writing the destination",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "print step-by-step progress",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			if path := c.String("store"); path != "" {
				cfg.Store.Path = path
			}

			st, err := store.Open(cfg.Store.Backend, cfg.Store.Path)
			if err != nil {
				return err
			}
			defer st.Close()

			summary, err := pipeline.Run(cfg, st, pipeline.Options{
				DryRun:  c.Bool("dry-run"),
				Verbose: c.Bool("verbose"),
			})
			if err != nil {
				return err
			}

			if !c.Bool("dry-run") {
				fmt.Printf("✅ %d URLs written to %s for period %s\n",
					summary.URLCount, cfg.Tables.Output, summary.PeriodLabel)
			}
			return nil
		},
	}
}

func guardCommand() *cli.Command {
	return &cli.Command{
		Name:  "guard",
		Usage: "decide whether the pipeline is due today and expose the decision as workflow outputs",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}

			raw := os.Getenv(cfg.Schedule.AnchorEnv)
			if raw == "" {
				return fmt.Errorf("%s must be set in the environment", cfg.Schedule.AnchorEnv)
			}
			anchor, err := schedule.ParseAnchor(raw)
			if err != nil {
				return err
			}

			decision := schedule.Evaluate(anchor, time.Now().UTC(), cfg.Schedule.CadenceDays)

			outputPath := os.Getenv("GITHUB_OUTPUT")
			if outputPath == "" {
				return fmt.Errorf("GITHUB_OUTPUT is not set in the environment")
			}
			file, err := os.OpenFile(outputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				return fmt.Errorf("failed to open GITHUB_OUTPUT: %w", err)
			}
			defer file.Close()
			if err := decision.WriteOutputs(file); err != nil {
				return err
			}

			fmt.Printf("Anchor UTC: %s\n", decision.Anchor.Format(time.RFC3339))
			fmt.Printf("Now UTC:    %s\n", decision.Now.Format(time.RFC3339))
			fmt.Printf("Days elapsed since anchor: %d\n", decision.DaysElapsed)
			if decision.ShouldRun {
				fmt.Println("Should run today: yes")
			} else {
				fmt.Println("Should run today: no")
			}
			return nil
		},
	}
}

func notifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "notify",
		Usage: "send the run summary to Telegram",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Value: "desconocido", Usage: "run status: success | failure"},
			&cli.StringFlag{Name: "executed-at", Usage: "local execution timestamp to report"},
			&cli.StringFlag{Name: "count", Usage: "number of variations written"},
			&cli.StringFlag{Name: "log", Usage: "run log file quoted on failure"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}

			n := notify.New(cfg.Notify.BaseURL, cfg.Notify.Token(), cfg.Notify.ChatID())
			text := notify.Build(notify.Message{
				Status:         c.String("status"),
				ExecutedAt:     c.String("executed-at"),
				VariationCount: c.String("count"),
				LogPath:        c.String("log"),
			})
			return n.Send(text)
		},
	}
}
