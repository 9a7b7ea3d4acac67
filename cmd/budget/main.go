package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mtlprog/budget/internal/api"
	"github.com/mtlprog/budget/internal/cache"
	"github.com/mtlprog/budget/internal/date"
	"github.com/mtlprog/budget/internal/export"
	"github.com/mtlprog/budget/internal/snapshot"
	"github.com/mtlprog/budget/internal/worker"
)

var settingsFlag = &cli.StringFlag{
	Name:    "settings",
	Usage:   "finance settings TOML file",
	EnvVars: []string{"SETTINGS_FILE"},
}

var dateFlag = &cli.StringFlag{
	Name:  "date",
	Usage: "valuation day, YYYY-MM-DD (default today)",
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cliApp := &cli.App{
		Name:  "budget",
		Usage: "point-in-time net worth valuation",
		Flags: []cli.Flag{settingsFlag},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API and the background workers",
				Action: serve,
			},
			{
				Name:   "networth",
				Usage:  "print the net worth summary of a day",
				Flags:  []cli.Flag{dateFlag},
				Action: printNetWorth,
			},
			{
				Name:   "fi",
				Usage:  "print the financial independence figures of a day",
				Flags:  []cli.Flag{dateFlag},
				Action: printFI,
			},
			{
				Name:  "export",
				Usage: "export the net worth history to XLSX and, when configured, Google Sheets",
				Flags: []cli.Flag{
					dateFlag,
					&cli.StringFlag{Name: "xlsx", Value: "budget.xlsx", Usage: "workbook path, empty to skip"},
				},
				Action: runExport,
			},
			{
				Name:   "quotes",
				Usage:  "fetch missing exchange rates and share prices",
				Action: refreshQuotes,
			},
		},
	}

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		slog.Error("budget failed", "error", err)
		os.Exit(1)
	}
}

func open(c *cli.Context) (*app, error) {
	return newApp(c.Context, c.String(settingsFlag.Name))
}

func dayFlag(a *app, c *cli.Context) (date.Date, error) {
	if s := c.String(dateFlag.Name); s != "" {
		return date.Parse(s)
	}
	return a.engine.Today(), nil
}

func serve(c *cli.Context) error {
	a, err := open(c)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := c.Context

	var hook worker.AfterSnapshotHook
	if exp, err := a.sheetsExporter(ctx); err != nil {
		slog.Warn("Google Sheets export disabled", "error", err)
	} else if exp != nil {
		hook = exp
	}

	go worker.NewQuoteWorker(a.quotes, a.cfg.QuoteWorkerInterval).Run(ctx)
	go worker.NewReportWorker(a.snapshots, a.cfg.ReportWorkerInterval, hook).Run(ctx)

	if a.cfg.AdminAPIKey == "" {
		slog.Warn("ADMIN_API_KEY not set, mutation endpoints are unprotected")
	}

	srv := api.NewServer(a.cfg.HTTPPort, api.NewHandler(a.engine, a.stores, a.snapshots), a.cfg.AdminAPIKey)
	errc := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", a.cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errc:
		return fmt.Errorf("HTTP server: %w", err)
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}
	slog.Info("shutdown complete")
	return nil
}

func printNetWorth(c *cli.Context) error {
	a, err := open(c)
	if err != nil {
		return err
	}
	defer a.Close()
	d, err := dayFlag(a, c)
	if err != nil {
		return err
	}

	s := snapshot.Summarize(a.engine, cache.New(a.stores), d)
	w := c.App.Writer
	fmt.Fprintf(w, "Net worth on %s: %s\n", d, s.NetWorth.Format(s.Currency))
	fmt.Fprintf(w, "FI net worth:      %s\n", s.FINetWorth.Format(s.Currency))
	fmt.Fprintf(w, "Portfolio:         %s\n", s.Portfolio.Format(s.Currency))
	for _, sh := range s.Currencies {
		fmt.Fprintf(w, "  %-6s %14s %6s%%\n", sh.Key, sh.Value.Format(s.Currency), sh.Percent.StringFixed(1))
	}
	for _, sh := range s.Classes {
		fmt.Fprintf(w, "  %-14s %14s %6s%%\n", sh.Key, sh.Value.Format(s.Currency), sh.Percent.StringFixed(1))
	}
	return nil
}

func printFI(c *cli.Context) error {
	a, err := open(c)
	if err != nil {
		return err
	}
	defer a.Close()
	d, err := dayFlag(a, c)
	if err != nil {
		return err
	}

	cc := cache.New(a.stores)
	cur := a.engine.DefaultCurrency()
	w := c.App.Writer
	fmt.Fprintf(w, "FI net worth on %s: %s\n", d, a.engine.FINetWorth(cc, d).Format(cur))
	fmt.Fprintf(w, "Yearly expenses:     %s\n", a.engine.FIExpenses(cc, d).Format(cur))
	fmt.Fprintf(w, "FI ratio:            %s%%\n", a.engine.FIRatio(cc, d).Shift(2).StringFixed(1))
	fmt.Fprintf(w, "Savings rate:        %s%%\n", a.engine.RunningSavingsRate(cc, d).Shift(2).StringFixed(1))

	switch cd := a.engine.RetirementCountdown(cc, d); {
	case !cd.Available:
		fmt.Fprintln(w, "Countdown:           no expenses recorded")
	case cd.Reached:
		fmt.Fprintln(w, "Countdown:           financially independent")
	case !cd.Reachable:
		fmt.Fprintln(w, "Countdown:           not reachable at the current savings")
	default:
		fmt.Fprintf(w, "Countdown:           %d years %d months (goal %s)\n", cd.Years, cd.RemainingMonths, cd.Goal.Format(cur))
	}
	return nil
}

func runExport(c *cli.Context) error {
	a, err := open(c)
	if err != nil {
		return err
	}
	defer a.Close()
	d, err := dayFlag(a, c)
	if err != nil {
		return err
	}
	ctx := c.Context

	summary, err := a.snapshots.Generate(ctx, d)
	if err != nil {
		return err
	}

	if path := c.String("xlsx"); path != "" {
		if err := export.NewService(a.engine, a.stores, export.NewXLSXWriter(path)).Export(ctx, summary); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "wrote %s\n", path)
	}

	exp, err := a.sheetsExporter(ctx)
	if err != nil {
		return err
	}
	if exp != nil {
		if err := exp.Export(ctx, summary); err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, "updated Google Sheets")
	}
	return nil
}

func refreshQuotes(c *cli.Context) error {
	a, err := open(c)
	if err != nil {
		return err
	}
	defer a.Close()
	return a.quotes.Refresh(c.Context)
}
