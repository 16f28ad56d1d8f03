package cmd

import (
	"context"
	"log"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

const migrationsTable = "schema_migrations"

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "Apply the Beacon schema migrations",
		Long: `Apply the SQL migrations that create the tenant schema: organizations,
auth accounts, users, invitations, system settings and the audit log.
Use --create to scaffold a new migration file instead.`,
	}
	migrateRollback bool
	migrateStatus   bool
	migrateCreate   string
	migrateDir      string
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "roll back the latest applied migration")
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "print applied and pending migrations without changing anything")
	migrateCmd.Flags().StringVar(&migrateCreate, "create", "", "scaffold an empty SQL migration with this name")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "db/migrations", "sql migrations directory")
}

func runMigration(_ *cobra.Command, _ []string) error {
	if migrateCreate != "" {
		if err := goose.Create(nil, migrateDir, migrateCreate, "sql"); err != nil {
			log.Fatalf("goose create: %v", err)
		}
		return nil
	}

	ctx := context.Background()
	cfg, err := loadConfig(".")
	if err != nil {
		log.Fatal(err)
	}

	db, err := goose.OpenDBWithDriver("pgx", cfg.Database.Source)
	if err != nil {
		log.Fatalf("goose: failed to open DB: %v\n", err)
	}
	defer db.Close()
	goose.SetTableName(migrationsTable)

	command := "up"
	switch {
	case migrateStatus:
		command = "status"
	case migrateRollback:
		command = "down"
	}

	if err := goose.RunContext(ctx, command, db, migrateDir); err != nil {
		log.Fatalf("goose %s: %v", command, err)
	}

	return nil
}
