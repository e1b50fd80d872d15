package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/erazemk/lekarna/internal/config"
	"github.com/erazemk/lekarna/internal/db"
	"github.com/erazemk/lekarna/internal/expiry"
	"github.com/erazemk/lekarna/internal/records"
	"github.com/erazemk/lekarna/internal/store"
)

const usage = "Usage: lekarnactl <init|upcoming|calendar> [flags]"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "init":
		err = cmdInit(os.Args[2:])
	case "upcoming":
		err = cmdUpcoming(os.Args[2:])
	case "calendar":
		err = cmdCalendar(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n%s\n", os.Args[1], usage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func cmdInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	dbPath := fs.String("db", "lekarna.sqlite3", "path to SQLite database file")
	email := fs.String("email", "", "email of the first account")
	name := fs.String("name", "", "full name of the first account")
	fs.Parse(args)

	if *email == "" {
		return fmt.Errorf("-email is required")
	}
	if _, err := os.Stat(*dbPath); err == nil {
		return fmt.Errorf("database file %s already exists", *dbPath)
	}

	password, err := initDatabase(*dbPath, strings.ToLower(strings.TrimSpace(*email)), *name)
	if err != nil {
		return err
	}

	fmt.Printf("Database created: %s\n", *dbPath)
	fmt.Println("Schema initialized.")
	fmt.Println()
	fmt.Println("Account created:")
	fmt.Printf("  Email:    %s\n", *email)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password. It can be changed after logging in.")
	return nil
}

// initDatabase creates a new database, runs migrations, and creates the first account.
func initDatabase(path, email, name string) (string, error) {
	database, err := db.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	fail := func(err error) (string, error) {
		database.Close()
		os.Remove(path)
		return "", err
	}

	if err := db.Migrate(context.Background(), database); err != nil {
		return fail(fmt.Errorf("running migrations: %w", err))
	}

	_, password, err := store.CreateAccount(context.Background(), database, email, name)
	if err != nil {
		return fail(err)
	}
	return password, nil
}

// queryFlags are shared by the read-only subcommands. -db and -tz override
// the configuration file.
type queryFlags struct {
	configPath *string
	dbPath     *string
	email      *string
	timezone   *string
}

func addQueryFlags(fs *flag.FlagSet) queryFlags {
	return queryFlags{
		configPath: fs.String("config", "", "YAML config file (default: $CONFIG_PATH or ./lekarna.yaml)"),
		dbPath:     fs.String("db", "", "path to SQLite database file (default: from config)"),
		email:      fs.String("email", "", "account whose items to show"),
		timezone:   fs.String("tz", "", "time zone calendar days are taken in (default: from config)"),
	}
}

// session is an opened account with its aggregator.
type session struct {
	agg     *expiry.Aggregator
	ownerID string
	close   func()
}

// open resolves the account and returns an aggregator over its records,
// wherever the configuration keeps them.
func (q queryFlags) open(ctx context.Context) (*session, error) {
	if *q.email == "" {
		return nil, fmt.Errorf("-email is required")
	}

	cfg, err := config.Load(*q.configPath)
	if err != nil {
		return nil, err
	}
	if *q.dbPath != "" {
		cfg.Database.Path = *q.dbPath
	}
	if *q.timezone != "" {
		cfg.Calendar.Timezone = *q.timezone
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	user, err := store.GetUserByEmail(ctx, database, strings.ToLower(strings.TrimSpace(*q.email)))
	if err != nil {
		database.Close()
		return nil, err
	}
	if user == nil {
		database.Close()
		return nil, fmt.Errorf("no account with email %s", *q.email)
	}

	recs, closeRecords, err := records.Open(ctx, cfg, database)
	if err != nil {
		database.Close()
		return nil, err
	}

	return &session{
		agg:     expiry.New(recs, cfg.Calendar.Location),
		ownerID: user.ID,
		close: func() {
			closeRecords()
			database.Close()
		},
	}, nil
}

func cmdUpcoming(args []string) error {
	fs := flag.NewFlagSet("upcoming", flag.ExitOnError)
	q := addQueryFlags(fs)
	at := fs.String("at", "", "reference instant (RFC 3339, default now)")
	fs.Parse(args)

	ref := time.Now()
	if *at != "" {
		t, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			return fmt.Errorf("parsing -at: %w", err)
		}
		ref = t
	}

	ctx := context.Background()
	sess, err := q.open(ctx)
	if err != nil {
		return err
	}
	defer sess.close()

	events, err := sess.agg.Upcoming(ctx, sess.ownerID, ref)
	if err != nil {
		return err
	}

	fmt.Printf("Expiring as of %s:\n", sess.agg.Today(ref))
	if len(events) == 0 {
		fmt.Println("  nothing expires today or tomorrow")
		return nil
	}
	for _, ev := range events {
		fmt.Printf("  %-9s %-10s %s\n", ev.Urgency, ev.Kind, ev.Label)
	}
	return nil
}

func cmdCalendar(args []string) error {
	fs := flag.NewFlagSet("calendar", flag.ExitOnError)
	q := addQueryFlags(fs)
	fs.Parse(args)

	ctx := context.Background()
	sess, err := q.open(ctx)
	if err != nil {
		return err
	}
	defer sess.close()

	cal, err := sess.agg.Calendar(ctx, sess.ownerID)
	if err != nil {
		return err
	}

	dates := cal.Dates()
	if len(dates) == 0 {
		fmt.Println("No dated items.")
		return nil
	}
	for _, d := range dates {
		fmt.Printf("%s  %s\n", d, weekday(d))
		for _, ev := range cal.On(d) {
			fmt.Printf("  %-10s %s\n", ev.Kind, ev.Label)
		}
	}
	return nil
}

func weekday(d civil.Date) string {
	return d.In(time.UTC).Weekday().String()[:3]
}
