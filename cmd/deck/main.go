// Command deck turns an invitation spreadsheet into the dashboard slide deck
// (and optionally the period workbook) without running the server.
//
//	deck -in convites.xlsx -out dashboard_cubo.pptx [-year 2025 -month 4] [-workbook tabelas.xlsx]
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	"github.com/ignite/cubo-visits/internal/config"
	"github.com/ignite/cubo-visits/internal/dashboard"
	"github.com/ignite/cubo-visits/internal/datanorm"
	"github.com/ignite/cubo-visits/internal/export"
	"github.com/ignite/cubo-visits/internal/ingest"
	"github.com/ignite/cubo-visits/internal/pkg/logger"
)

type options struct {
	configPath   string
	in           string
	out          string
	workbook     string
	year         int
	month        int
	organization string
	notified     string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "config/config.yaml", "path to the YAML config file")
	flag.StringVar(&opts.in, "in", "", "spreadsheet to read (.xlsx, .xls, .tsv)")
	flag.StringVar(&opts.out, "out", "dashboard_cubo.pptx", "slide deck to write")
	flag.StringVar(&opts.workbook, "workbook", "", "optional workbook to write with the period tables")
	flag.IntVar(&opts.year, "year", 0, "year to chart (default: latest)")
	flag.IntVar(&opts.month, "month", 0, "month to chart (default: first available)")
	flag.StringVar(&opts.organization, "organization", "", "restrict charts to one organization")
	flag.StringVar(&opts.notified, "notified", "", "restrict charts by host notification: sim or nao")
	flag.Parse()

	if opts.in == "" {
		fmt.Fprintln(os.Stderr, "usage: deck -in <spreadsheet> [-out deck.pptx] [-workbook tables.xlsx]")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		logger.Error("deck failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, err := config.LoadFromEnv(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(cfg.Logging.Redact())

	notification, ok := datanorm.ParseNotificationFilter(opts.notified)
	if !ok {
		return fmt.Errorf("invalid -notified %q: use sim or nao", opts.notified)
	}

	f, err := os.Open(opts.in)
	if err != nil {
		return err
	}
	defer f.Close()

	raw, format, err := ingest.ReadFile(f, opts.in)
	if err != nil {
		return err
	}
	records, stats, err := datanorm.NormalizeWithStats(raw)
	if err != nil {
		return err
	}
	logger.Info("spreadsheet read",
		"file", opts.in,
		"format", string(format),
		"rows", stats.TotalRows,
		"kept", stats.Kept,
		"dropped", stats.Dropped,
	)

	periods, err := dashboard.PeriodOptions(records)
	if err != nil {
		return err
	}
	filter := dashboard.Filter{
		Year:         opts.year,
		Month:        opts.month,
		Organization: opts.organization,
		Notification: notification,
	}.Resolve(periods)
	filtered := filter.Apply(records)
	if len(filtered) == 0 {
		logger.Warn(dashboard.WarningEmptyPeriod, "year", filter.Year, "month", filter.Month)
	}

	deck, err := export.BuildDeck(records, filtered, export.DeckOptions{
		Title:            cfg.Dashboard.Title,
		Year:             filter.Year,
		Month:            filter.Month,
		VenueOperator:    cfg.Dashboard.VenueOperator,
		TopOrganizations: cfg.Dashboard.TopOrganizations,
	})
	if err != nil {
		return err
	}
	data, err := deck.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.out, data, 0o644); err != nil {
		return fmt.Errorf("write deck: %w", err)
	}
	logger.Info("deck written", "path", opts.out, "period", export.PeriodLabel(filter.Year, filter.Month))

	if opts.workbook == "" {
		return nil
	}
	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, filtered, export.WorkbookOptions{
		FrequentThreshold: cfg.Dashboard.FrequentThreshold,
	}); err != nil {
		return err
	}
	if err := os.WriteFile(opts.workbook, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	logger.Info("workbook written", "path", opts.workbook)
	return nil
}
