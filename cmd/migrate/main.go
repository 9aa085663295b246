package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/academy/backend/internal/infrastructure/config"
	"github.com/academy/backend/internal/infrastructure/logger"
	"github.com/academy/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

// session is what a command runs against. db and migrator are nil for
// commands that only touch the migrations directory.
type session struct {
	log      *zap.Logger
	dir      string
	db       *sql.DB
	migrator *migration.Migrator
}

type command struct {
	usage   string
	help    string
	args    int
	offline bool
	run     func(s *session, args []string) error
}

var commands = map[string]command{
	"up": {help: "Apply all pending migrations", run: func(s *session, _ []string) error {
		return s.migrator.Up()
	}},
	"down": {help: "Roll back all migrations", run: func(s *session, _ []string) error {
		return s.migrator.Down()
	}},
	"step": {usage: "<n>", help: "Apply n migrations (negative rolls back)", args: 1, run: func(s *session, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		return s.migrator.Steps(n)
	}},
	"version": {help: "Show the applied migration version", run: func(s *session, _ []string) error {
		version, dirty, err := s.migrator.Version()
		if err != nil {
			return err
		}
		if version == 0 {
			s.log.Info("No migrations applied")
			return nil
		}
		s.log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	}},
	"force": {usage: "<version>", help: "Mark a version as applied to clear a dirty state", args: 1, run: func(s *session, args []string) error {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return s.migrator.Force(version)
	}},
	"verify": {help: "Check that every ledger table and view exists", run: func(s *session, _ []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := migration.VerifyLedgerSchema(ctx, s.db); err != nil {
			return err
		}
		s.log.Info("Ledger schema complete", zap.Int("relations", len(migration.LedgerRelations)))
		return nil
	}},
	"create": {usage: "<name>", help: "Create an empty up/down migration pair", args: 1, offline: true, run: func(s *session, args []string) error {
		mf, err := migration.CreateMigration(s.dir, args[0], time.Now())
		if err != nil {
			return err
		}
		s.log.Info("Migration created",
			zap.String("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return nil
	}},
	"list": {help: "List migration files", offline: true, run: func(s *session, _ []string) error {
		files, err := migration.ListMigrations(s.dir)
		if err != nil {
			return err
		}
		s.log.Info("Available migrations", zap.Int("count", len(files)))
		for _, f := range files {
			fmt.Println("  -", f)
		}
		return nil
	}},
}

func main() {
	dir := flag.String("path", "", "Path to migrations directory (default: ./migrations)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}
	name, args := args[0], args[1:]
	cmd, ok := commands[name]
	if !ok || len(args) < cmd.args {
		printUsage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{Level: *logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	s := &session{log: log}
	if s.dir, err = resolveMigrationsPath(*dir); err != nil {
		log.Fatal("Failed to resolve migrations path", zap.Error(err))
	}
	log.Debug("Migration CLI started", zap.String("command", name), zap.String("migrations_path", s.dir))

	if !cmd.offline {
		closeDB, err := s.connect()
		if err != nil {
			log.Fatal("Failed to open database", zap.Error(err))
		}
		defer closeDB()
	}

	if err := cmd.run(s, args); err != nil {
		var missing *migration.MissingRelationsError
		if errors.As(err, &missing) {
			log.Fatal("Ledger schema incomplete", zap.Strings("missing", missing.Relations))
		}
		log.Fatal("Command failed", zap.String("command", name), zap.Error(err))
	}
}

// connect opens the configured database and the migrator on top of it
func (s *session) connect() (func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	m, err := migration.New(db, s.dir, s.log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.db, s.migrator = db, m
	return func() {
		if err := m.Close(); err != nil {
			s.log.Warn("Failed to close migrator", zap.Error(err))
		}
	}, nil
}

// resolveMigrationsPath falls back to ./migrations, then to the repository
// root relative to the executable
func resolveMigrationsPath(path string) (string, error) {
	if path != "" {
		return filepath.Abs(path)
	}
	if _, err := os.Stat(defaultMigrationsPath); err == nil {
		return filepath.Abs(defaultMigrationsPath)
	}
	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), "..", "..", defaultMigrationsPath)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Abs(candidate)
		}
	}
	return filepath.Abs(defaultMigrationsPath)
}

func printUsage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(os.Stderr, "Academy billing migration tool")
	fmt.Fprintln(os.Stderr, "\nUsage:\n  migrate [flags] <command> [arguments]\n\nCommands:")
	for _, name := range names {
		c := commands[name]
		fmt.Fprintf(os.Stderr, "  %-20s %s\n", name+" "+c.usage, c.help)
	}
	fmt.Fprintln(os.Stderr, "\nFlags:")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, "\nDatabase settings come from ACADEMY_DATABASE_* (HOST, PORT, USER, PASSWORD, DBNAME, SSLMODE).")
}
