// Command dashctl runs the dashboard computations against a directory of
// exported analytics payloads, without the HTTP server.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/andresuchdata/bookstock-insights/internal/config"
	"github.com/andresuchdata/bookstock-insights/internal/domain"
	"github.com/andresuchdata/bookstock-insights/internal/drive"
	"github.com/andresuchdata/bookstock-insights/internal/export"
	"github.com/andresuchdata/bookstock-insights/internal/refresh"
	"github.com/andresuchdata/bookstock-insights/internal/repository/postgres"
	"github.com/andresuchdata/bookstock-insights/internal/service"
	"github.com/andresuchdata/bookstock-insights/internal/storage"
	"github.com/andresuchdata/bookstock-insights/pkg/logger"
	"github.com/urfave/cli/v2"
)

func newDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "dir",
		Usage:   "Directory holding predictions.json, order-suggestions.json, profitability.{json,xlsx} and dashboard.json",
		Value:   ".",
		EnvVars: []string{"DASHCTL_DIR"},
	}
}

func windowFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "from", Usage: "Inclusive lower date bound"},
		&cli.StringFlag{Name: "to", Usage: "Inclusive upper date bound"},
	}
}

func main() {
	cfg := config.Load()
	logger.Setup(cfg.Log.Format, cfg.Log.Level)

	app := &cli.App{
		Name:  "dashctl",
		Usage: "Inspect and export bookstock dashboard data from payload files",
		Flags: []cli.Flag{newDirFlag()},
		Commands: []*cli.Command{
			{
				Name:   "timeline",
				Usage:  "Reconcile the demand and sales forecasts into one timeline",
				Flags:  windowFlags(),
				Action: runTimeline,
			},
			{
				Name:  "classify",
				Usage: "Classify profitability or suggestion urgency",
				Subcommands: []*cli.Command{
					{
						Name:   "profitability",
						Usage:  "Normalize profit margins into heatmap bands",
						Action: runHeatmap,
					},
					{
						Name:   "urgency",
						Usage:  "List order suggestions, most urgent first",
						Action: runSuggestions,
					},
				},
			},
			{
				Name:  "export",
				Usage: "Render the timeline or heatmap as CSV or XLSX",
				Flags: append(windowFlags(),
					&cli.StringFlag{Name: "kind", Usage: "timeline or heatmap", Value: "timeline"},
					&cli.StringFlag{Name: "format", Usage: "csv or xlsx", Value: "csv"},
					&cli.StringFlag{Name: "out", Usage: "Output file (stdout when empty)"},
				),
				Action: runExport,
			},
			{
				Name:  "exports",
				Usage: "Inspect exports uploaded to object storage",
				Subcommands: []*cli.Command{
					{
						Name:  "list",
						Usage: "List uploaded exports, newest first",
						Action: func(c *cli.Context) error {
							return runListExports(c, cfg.Storage)
						},
					},
					{
						Name:  "fetch",
						Usage: "Download one uploaded export",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "key", Usage: "Object key from exports list", Required: true},
							&cli.StringFlag{Name: "out", Usage: "Destination file", Required: true},
						},
						Action: func(c *cli.Context) error {
							return runFetchExport(c, cfg.Storage)
						},
					},
				},
			},
			{
				Name:  "approvals",
				Usage: "List recorded order approvals from the database",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "batch-id", Usage: "Only approvals from this batch"},
				},
				Action: func(c *cli.Context) error {
					return runApprovals(c, cfg.Database)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("dashctl failed")
	}
}

// loadDashboard fetches one snapshot from the payload directory and wraps it
// in the same service the HTTP API uses.
func loadDashboard(c *cli.Context) (*service.DashboardService, error) {
	source := drive.NewPayloadSource(localFiles{root: c.String("dir")}, "")
	poller := refresh.NewPoller(source, nil, 0)
	if err := poller.Refresh(c.Context); err != nil {
		return nil, err
	}
	return service.NewDashboardService(poller, nil, nil), nil
}

func window(c *cli.Context) domain.TimelineWindow {
	return domain.TimelineWindow{From: c.String("from"), To: c.String("to")}
}

func runTimeline(c *cli.Context) error {
	dashboard, err := loadDashboard(c)
	if err != nil {
		return err
	}
	view, err := dashboard.Timeline(c.Context, window(c))
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, view)
}

func runHeatmap(c *cli.Context) error {
	dashboard, err := loadDashboard(c)
	if err != nil {
		return err
	}
	heatmap, err := dashboard.Heatmap(c.Context)
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, heatmap)
}

func runSuggestions(c *cli.Context) error {
	dashboard, err := loadDashboard(c)
	if err != nil {
		return err
	}
	suggestions, err := dashboard.Suggestions(c.Context)
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, suggestions)
}

func runExport(c *cli.Context) error {
	format, err := export.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}

	dashboard, err := loadDashboard(c)
	if err != nil {
		return err
	}

	var table export.Table
	switch c.String("kind") {
	case "timeline":
		view, err := dashboard.Timeline(c.Context, window(c))
		if err != nil {
			return err
		}
		table = export.TimelineTable(view.Points)
	case "heatmap":
		heatmap, err := dashboard.Heatmap(c.Context)
		if err != nil {
			return err
		}
		table = export.HeatmapTable(*heatmap)
	default:
		return fmt.Errorf("unknown export kind %q", c.String("kind"))
	}

	data, err := export.Render(table, format)
	if err != nil {
		return err
	}

	if out := c.String("out"); out != "" {
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return err
		}
		logger.Log.Info().Str("file", out).Int("bytes", len(data)).Msg("export written")
		return nil
	}
	_, err = c.App.Writer.Write(data)
	return err
}

func newExporter(cfg config.StorageConfig) (*export.Exporter, error) {
	client, err := storage.NewMinioClient(cfg)
	if err != nil {
		return nil, err
	}
	return export.NewExporter(client, cfg.Prefix), nil
}

func runListExports(c *cli.Context, cfg config.StorageConfig) error {
	exporter, err := newExporter(cfg)
	if err != nil {
		return err
	}
	objects, err := exporter.List(c.Context)
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, objects)
}

func runFetchExport(c *cli.Context, cfg config.StorageConfig) error {
	exporter, err := newExporter(cfg)
	if err != nil {
		return err
	}
	if err := exporter.Download(c.Context, c.String("key"), c.String("out")); err != nil {
		return err
	}
	logger.Log.Info().Str("key", c.String("key")).Str("file", c.String("out")).Msg("export downloaded")
	return nil
}

func runApprovals(c *cli.Context, cfg config.DatabaseConfig) error {
	db, err := postgres.NewDB(&cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	records, err := postgres.NewApprovalRepository(db).ListApprovals(c.Context, c.String("batch-id"))
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, records)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
