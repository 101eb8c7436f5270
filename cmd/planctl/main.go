package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/aswinpradeepc/edurider-v2/internal/app"
	"github.com/aswinpradeepc/edurider-v2/internal/config"
	"github.com/aswinpradeepc/edurider-v2/internal/domain"
	"github.com/aswinpradeepc/edurider-v2/internal/platform/db"
)

// planctl is the operational entry point for the planning engine: regenerate
// trips for a service date and sequence their routes.
func main() {
	config.Load()

	if os.Getenv("EDURIDER_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	if os.Getenv("EDURIDER_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	cliApp := &cli.App{
		Name:  "planctl",
		Usage: "Plan school-bus trips and optimize their routes",

		Commands: []*cli.Command{
			{
				Name:  "plan",
				Usage: "Regenerate trips for a service date",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "date", Usage: "service date (YYYY-MM-DD)", Required: true},
					&cli.StringFlag{Name: "direction", Usage: "to_school or from_school (both when omitted)"},
				},
				Action: runPlan,
			},
			{
				Name:  "optimize",
				Usage: "Sequence routes for every trip of a service date",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "date", Usage: "service date (YYYY-MM-DD)", Required: true},
				},
				Action: runOptimize,
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func buildEngine() (*app.Engine, func(), error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		return nil, nil, cli.Exit("DATABASE_URL is required", 64)
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	engine, err := app.Build(conn)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	return engine, func() { conn.Close() }, nil
}

func runPlan(c *cli.Context) error {
	date, err := time.Parse("2006-01-02", c.String("date"))
	if err != nil {
		return cli.Exit("date must be YYYY-MM-DD", 64)
	}

	directions := []domain.Direction{domain.ToSchool, domain.FromSchool}
	if raw := c.String("direction"); raw != "" {
		direction, err := domain.ParseDirection(raw)
		if err != nil {
			return cli.Exit("direction must be to_school or from_school", 64)
		}
		directions = []domain.Direction{direction}
	}

	engine, closeDB, err := buildEngine()
	if err != nil {
		return err
	}
	defer closeDB()

	for _, direction := range directions {
		result, err := engine.Planner.Plan(c.Context, date, direction, domain.DefaultTimeWindow(direction))
		if err != nil {
			return fmt.Errorf("plan %s %s: %w", c.String("date"), direction, err)
		}

		fmt.Printf("%s %s: created %d trips for %d eligible students\n",
			c.String("date"), direction, len(result.Trips), result.EligibleCount)
		for _, warn := range result.Warnings {
			fmt.Printf("  warning %s\n", warn)
		}
	}

	return nil
}

func runOptimize(c *cli.Context) error {
	date, err := time.Parse("2006-01-02", c.String("date"))
	if err != nil {
		return cli.Exit("date must be YYYY-MM-DD", 64)
	}

	engine, closeDB, err := buildEngine()
	if err != nil {
		return err
	}
	defer closeDB()

	result, err := engine.Sequencer.OptimizeDate(c.Context, date)
	if err != nil {
		return fmt.Errorf("optimize %s: %w", c.String("date"), err)
	}

	fmt.Printf("%s: sequenced %d trips (%d degraded to straight-line estimates)\n",
		c.String("date"), result.Sequenced, result.Degraded)

	return nil
}
