// Command migrate applies or rolls back the embedded schema migrations for
// the store selected by STORE_DRIVER and DATABASE_URL.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/starmatch/starmatch/internal/config"
	"github.com/starmatch/starmatch/internal/repository"
)

var errUsage = errors.New("unknown command")

// migrator is the subset of repository.Migrator the commands use.
type migrator interface {
	Up() error
	Down(steps int) error
	Version() (uint, bool, error)
	Close() error
}

func main() {
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fatalf("config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	m, err := repository.NewMigrator(cfg.StoreDriver, cfg.DatabaseURL, logger)
	if err != nil {
		fatalf("migration init failed: %v", err)
	}

	if err := execute(m, args, os.Stdout, logger); err != nil {
		if errors.Is(err, errUsage) {
			usage()
			os.Exit(1)
		}
		fatalf("%v", err)
	}
}

// execute runs one command and always closes m before returning.
func execute(m migrator, args []string, out io.Writer, logger *slog.Logger) error {
	err := runCommand(m, args, out, logger)
	if cerr := m.Close(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("close migrator: %w", cerr))
	}
	return err
}

func runCommand(m migrator, args []string, out io.Writer, logger *slog.Logger) error {
	switch args[0] {
	case "up":
		if err := m.Up(); err != nil {
			return fmt.Errorf("up failed: %w", err)
		}
		logger.Info("migrations: up completed")

	case "down":
		steps, err := parseSteps(args[1:])
		if err != nil {
			return fmt.Errorf("down: %w", err)
		}
		if err := m.Down(steps); err != nil {
			return fmt.Errorf("down failed: %w", err)
		}
		logger.Info("migrations: down completed", "steps", steps)

	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			return fmt.Errorf("version failed: %w", err)
		}
		fmt.Fprintf(out, "version: %d  dirty: %v\n", v, dirty)

	default:
		return fmt.Errorf("%w %q", errUsage, args[0])
	}
	return nil
}

// parseSteps reads the optional step count for "down". It defaults to 1.
func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid steps argument %q", args[0])
	}
	return n, nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate <command> [args]

Commands:
  up           Apply all pending migrations
  down [N]     Rollback N migrations (default: 1)
  version      Print current migration version

Environment:
  STORE_DRIVER   sqlite (default) or postgres
  DATABASE_URL   SQLite file path or postgres:// URL`)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
