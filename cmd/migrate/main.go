package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/infrastructure/config"
	"github.com/schoolhub/backend/internal/infrastructure/logger"
	"github.com/schoolhub/backend/internal/infrastructure/migration"
	"github.com/schoolhub/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const superAdminPasswordEnv = "SCHOOLHUB_SUPERADMIN_PASSWORD"

func main() {
	var (
		migrationsPath string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "", "migrations directory (default: database.migrations_path)")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if migrationsPath == "" {
		migrationsPath = cfg.Database.MigrationsPath
	}

	// File-only commands don't need a database connection
	switch args[0] {
	case "create":
		if len(args) < 2 {
			log.Fatal("usage: migrate create NAME")
		}
		f, err := migration.Create(migrationsPath, args[1])
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		fmt.Println(f.UpPath)
		fmt.Println(f.DownPath)
		return
	case "list":
		files, err := migration.List(migrationsPath)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		for _, f := range files {
			fmt.Printf("%06d  %s\n", f.Version, f.Name)
		}
		return
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to reach database", zap.Error(err))
	}

	if args[0] == "superadmin" {
		if err := createSuperAdmin(db, args, log); err != nil {
			log.Fatal("Failed to create super admin", zap.Error(err))
		}
		return
	}

	m, err := migration.New(db, migrationsPath, log)
	if err != nil {
		log.Fatal("Failed to initialize migrator", zap.Error(err))
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	if err := run(m, args); err != nil {
		log.Fatal("Migration command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

func run(m *migration.Migrator, args []string) error {
	switch args[0] {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "steps":
		n, err := intArg(args)
		if err != nil {
			return err
		}
		return m.Steps(n)
	case "goto":
		v, err := intArg(args)
		if err != nil {
			return err
		}
		if v < 0 {
			return fmt.Errorf("version must be positive")
		}
		return m.GoTo(uint(v))
	case "force":
		v, err := intArg(args)
		if err != nil {
			return err
		}
		return m.Force(v)
	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version %d (dirty: %t)\n", v, dirty)
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// createSuperAdmin adds a platform user. The password is read from
// SCHOOLHUB_SUPERADMIN_PASSWORD so it stays out of the shell history.
func createSuperAdmin(db *sql.DB, args []string, log *zap.Logger) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: migrate superadmin USERNAME")
	}
	password := os.Getenv(superAdminPasswordEnv)
	if password == "" {
		return fmt.Errorf("%s is not set", superAdminPasswordEnv)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	if err != nil {
		return err
	}
	user, err := identity.NewActiveUser(identity.PlatformTenantID, args[1], password, identity.RoleSuperAdmin)
	if err != nil {
		return err
	}
	user.MustChangePassword = true
	if err := persistence.NewGormUserRepository(gormDB).Create(context.Background(), user); err != nil {
		return err
	}
	log.Info("Super admin created", zap.String("username", user.Username), zap.String("user_id", user.ID.String()))
	return nil
}

func intArg(args []string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("%s requires a numeric argument", args[0])
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("invalid argument %q: %w", args[1], err)
	}
	return n, nil
}

func printUsage() {
	fmt.Fprint(os.Stderr, `SchoolHub database migrations

Usage: migrate [flags] COMMAND [ARG]

Commands:
  up             apply all pending migrations
  down           roll back all migrations
  steps N        apply N migrations (negative rolls back)
  goto V         migrate to version V
  version        print the applied version
  force V        mark version V as applied (clears dirty state)
  create NAME    write the next numbered up/down pair
  list           list migration files
  superadmin U   create platform user U (password from SCHOOLHUB_SUPERADMIN_PASSWORD)

Flags:
`)
	flag.PrintDefaults()
}
