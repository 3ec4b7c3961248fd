package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/taskhub-io/ms-go-taskhub/config"
	"github.com/taskhub-io/ms-go-taskhub/migrations"

	_ "github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		db, err := sql.Open("mysql", cfg.DSN())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			return err
		}

		applied, err := applySchema(cmd.Context(), db, migrations.Schema)
		if err != nil {
			return err
		}

		fmt.Printf("applied %d statement(s)\n", applied)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

// applySchema executes the schema statement by statement. The MySQL driver
// rejects multi-statement exec by default.
func applySchema(ctx context.Context, db *sql.DB, schema string) (int, error) {
	applied := 0
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return applied, fmt.Errorf("applying statement %d: %w", applied+1, err)
		}
		applied++
	}
	return applied, nil
}
