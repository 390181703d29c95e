// Command seatctl is the operator tool for the seating store: snapshot
// export and restore, factory reset, schema migrations and a tail of the
// change-event topics.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ms-seating/internal/backup"
	"ms-seating/internal/config"
	"ms-seating/internal/database"
	"ms-seating/internal/database/migrations"
	"ms-seating/internal/kafka"
	"ms-seating/internal/logger"
	"ms-seating/internal/models"
)

const usage = `usage: seatctl <command> [flags]

commands:
  export  -o FILE   write a snapshot (default stdout)
  import  -i FILE   replace the store with a snapshot (default stdin)
  reset   -yes      delete every member and booking, restore default settings
  migrate -down     apply (or roll back) the PostgreSQL migrations
  tail    -group ID print change events from Kafka until interrupted
`

func main() {
	_ = godotenv.Load()
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	log := logger.NewConsoleLogger(os.Stderr)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "export":
		err = runExport(ctx, cfg, log, args)
	case "import":
		err = runImport(ctx, cfg, log, args)
	case "reset":
		err = runReset(ctx, cfg, log, args)
	case "migrate":
		err = runMigrate(ctx, cfg, log, args)
	case "tail":
		err = runTail(ctx, cfg, log, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Error("CLI", err.Error())
		os.Exit(1)
	}
}

func openService(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backup.Service, func(), error) {
	bunDB, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.Driver != database.DriverPostgres {
		if err := database.CreateSchema(ctx, bunDB); err != nil {
			bunDB.Close()
			return nil, nil, err
		}
	}
	return backup.NewService(bunDB, log), func() { bunDB.Close() }, nil
}

func runExport(ctx context.Context, cfg *config.Config, log *logger.Logger, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("o", "", "output file")
	_ = fs.Parse(args)

	svc, closeDB, err := openService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDB()

	snap, err := svc.Export(ctx)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("create %s: %w", *out, err)
		}
		defer f.Close()
		w = f
	}
	return backup.Encode(w, snap)
}

func runImport(ctx context.Context, cfg *config.Config, log *logger.Logger, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	in := fs.String("i", "", "input file")
	_ = fs.Parse(args)

	var r io.Reader = os.Stdin
	if *in != "" {
		f, err := os.Open(*in)
		if err != nil {
			return fmt.Errorf("open %s: %w", *in, err)
		}
		defer f.Close()
		r = f
	}
	snap, err := backup.Decode(r)
	if err != nil {
		return err
	}

	svc, closeDB, err := openService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDB()

	res, err := svc.Import(ctx, *snap)
	if err != nil {
		return err
	}
	log.Info("CLI", fmt.Sprintf("Restored %d members and %d bookings", res.Members, res.Bookings))
	return nil
}

func runReset(ctx context.Context, cfg *config.Config, log *logger.Logger, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	yes := fs.Bool("yes", false, "confirm the reset")
	_ = fs.Parse(args)
	if !*yes {
		return fmt.Errorf("reset deletes every member and booking; pass -yes to confirm")
	}

	svc, closeDB, err := openService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDB()
	return svc.Reset(ctx)
}

func runMigrate(ctx context.Context, cfg *config.Config, log *logger.Logger, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	down := fs.Bool("down", false, "roll back every migration")
	_ = fs.Parse(args)

	if cfg.Database.Driver != database.DriverPostgres {
		return fmt.Errorf("migrate needs DB_DRIVER=postgres, got %q", cfg.Database.Driver)
	}
	bunDB, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer bunDB.Close()

	runner := migrations.NewRunner(bunDB, migrations.MigrateOptions{MigrationsDir: cfg.Database.MigrationsDir}, log)
	defer runner.Close()
	if *down {
		return runner.MigrateDown()
	}
	return runner.MigrateUp()
}

func runTail(ctx context.Context, cfg *config.Config, log *logger.Logger, args []string) error {
	fs := flag.NewFlagSet("tail", flag.ExitOnError)
	group := fs.String("group", "seatctl-tail", "consumer group id")
	_ = fs.Parse(args)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, kafka.Topics(), *group, log)
	defer consumer.Close()

	err := consumer.Start(ctx, func(event models.ChangeEvent) {
		fmt.Printf("%s %-18s %s\n", event.OccurredAt.Format("2006-01-02T15:04:05"), event.Type, event.ID)
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}
