package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/erazemk/gegenstand/internal/config"
	"github.com/erazemk/gegenstand/internal/db"
	"github.com/erazemk/gegenstand/internal/model"
	"github.com/erazemk/gegenstand/internal/notify"
	"github.com/erazemk/gegenstand/internal/service"
)

const usage = `Usage: gegenstand [command] [flags]

Commands:
  serve      run the HTTP API and the reminder scheduler (default)
  sweep      run one reminder sweep and exit
  adduser    create an account (-name, -email; password is prompted)

Flags:
  -d, -db <path>           SQLite database path (default: gegenstand.sqlite3)
  -a, -addr <host:port>    listen address (default: :8080)
  -l, -log <path>          also append logs to this file
  -log-level <level>       debug, info, warn or error (default: info)
  -jwt-secret <secret>     token signing key (default: generated and stored in the database)
  -token-ttl <duration>    token lifetime (default: 24h)
  -sweep-interval <dur>    background sweep interval, 0 disables (default: 1h)
  -cors-origins <list>     comma-separated allowed origins, "*" matches one host label
  -redis-addr <host:port>  Redis for auth rate limiting (default: disabled)
  -redis-password <pw>
  -auth-rate <n>           auth requests per second per client (default: 1)
  -auth-burst <n>          auth request burst per client (default: 10)
  -smtp-host, -smtp-port, -smtp-user, -smtp-pass, -smtp-from
                           mail reminders to item owners when set
  -h, -help                show this help and exit

Every flag can also be set as GEGENSTAND_<FLAG> (dashes become underscores),
in a .env file, or in a config file named by GEGENSTAND_CONFIG.
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	command := "serve"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		command, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet("gegenstand "+command, flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stdout, usage) }

	var name, email string
	if command == "adduser" {
		fs.StringVar(&name, "name", "", "")
		fs.StringVar(&email, "email", "", "")
	}

	cfg, err := config.Load(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		return 1
	}

	closeLog, err := setupLogger(cfg.LogPath, cfg.Level())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer closeLog()

	database, err := openDatabase(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		return 1
	}
	defer database.Close()

	switch command {
	case "serve":
		err = serve(cfg, database)
	case "sweep":
		err = sweep(cfg, database)
	case "adduser":
		err = addUser(cfg, database, name, email)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		fs.Usage()
		return 1
	}
	if err != nil {
		slog.Error(command+" failed", "error", err)
		return 1
	}
	return 0
}

// openDatabase opens the database and applies pending migrations.
func openDatabase(path string) (*sql.DB, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(database); err != nil {
		database.Close()
		return nil, err
	}
	slog.Info("database ready", "path", path)
	return database, nil
}

// newNotifier returns the email notifier when SMTP is configured.
func newNotifier(cfg *config.Config) notify.Notifier {
	if !cfg.SMTP.Configured() {
		return notify.Noop{}
	}
	slog.Info("reminder emails enabled", "smtp", cfg.SMTP.Host)
	return notify.NewEmailNotifier(cfg.SMTP)
}

func sweep(cfg *config.Config, database *sql.DB) error {
	reminders := service.NewReminders(database, newNotifier(cfg))
	fired, err := reminders.RunSweep(context.Background(), model.Today())
	if err != nil {
		return err
	}
	fmt.Printf("Reminders fired: %d\n", fired)
	return nil
}
