package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/amirasaad/convlog/infra/initializer"
	"github.com/amirasaad/convlog/pkg/app"
	"github.com/amirasaad/convlog/pkg/config"
	"github.com/amirasaad/convlog/pkg/domain/conversion"
	conversionsvc "github.com/amirasaad/convlog/pkg/service/conversion"
	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

const usage = `Usage: cli <command> [arguments]
Commands:
  submit <input> <from> <to> <result> [timestamp] [--id id]
  history
  clear
  count`

var errUsage = errors.New("invalid usage")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, errUsage) {
			_, _ = color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		_, _ = fmt.Fprintln(out, usage)
		return errUsage
	}
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	withCLIDefaults(cfg)

	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	application := app.New(deps, cfg)
	defer application.Close() //nolint: errcheck

	return execute(context.Background(), application.ConversionService, args, out)
}

// withCLIDefaults adapts cfg to a one-shot command. An in-process cache dies
// with the command, so only a shared Redis cache is kept.
func withCLIDefaults(cfg *config.App) {
	// Keep service logs out of the command output.
	cfg.Log.Level = int(log.WarnLevel)
	if cfg.History.CacheBackend != config.CacheBackendRedis {
		cfg.History.CacheBackend = config.CacheBackendNone
	}
}

// execute runs a single command against svc.
func execute(ctx context.Context, svc *conversionsvc.Service, args []string, out io.Writer) error {
	switch args[0] {
	case "submit":
		return submit(ctx, svc, args[1:], out)
	case "history":
		return history(ctx, svc, out)
	case "clear":
		if err := svc.Clear(ctx); err != nil {
			return err
		}
		_, _ = color.New(color.FgGreen).Fprintln(out, "History cleared")
		return nil
	case "count":
		n, err := svc.Count(ctx)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "%d conversions stored\n", n)
		return nil
	default:
		_, _ = fmt.Fprintf(out, "Unknown command %q\n%s\n", args[0], usage)
		return errUsage
	}
}

func submit(ctx context.Context, svc *conversionsvc.Service, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("submit", pflag.ContinueOnError)
	fs.SetOutput(out)
	id := fs.String("id", "", "record id (random UUID when empty)")
	if err := fs.Parse(args); err != nil {
		return errors.Join(errUsage, err)
	}
	pos := fs.Args()
	if len(pos) < 4 || len(pos) > 5 {
		_, _ = fmt.Fprintln(out, "Usage: submit <input> <from> <to> <result> [timestamp] [--id id]")
		return errUsage
	}

	input, err := strconv.ParseFloat(pos[0], 64)
	if err != nil {
		return fmt.Errorf("invalid input value %q: %w", pos[0], err)
	}
	result, err := strconv.ParseFloat(pos[3], 64)
	if err != nil {
		return fmt.Errorf("invalid result %q: %w", pos[3], err)
	}
	ts := time.Now()
	if len(pos) == 5 {
		if ts, err = conversion.ParseTimestamp(pos[4]); err != nil {
			return err
		}
	}
	if *id == "" {
		*id = uuid.NewString()
	}

	record, err := conversion.New(*id, input, pos[1], pos[2], result, ts)
	if err != nil {
		return err
	}
	outcome, err := svc.Submit(ctx, record)
	if err != nil {
		return err
	}
	_, _ = color.New(color.FgGreen).Fprintf(out, "Conversion %s %s\n", record.ID, outcome)
	return nil
}

func history(ctx context.Context, svc *conversionsvc.Service, out io.Writer) error {
	records, err := svc.ListRecent(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		_, _ = color.New(color.FgYellow).Fprintln(out, "No conversions recorded")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = color.New(color.Bold).Fprintln(tw, "TIMESTAMP\tINPUT\tFROM\tRESULT\tTO\tID")
	for _, r := range records {
		_, _ = fmt.Fprintf(tw, "%s\t%g\t%s\t%g\t%s\t%s\n",
			conversion.FormatTimestamp(r.Timestamp), r.InputValue, r.FromUnit, r.Result, r.ToUnit, r.ID)
	}
	return tw.Flush()
}
