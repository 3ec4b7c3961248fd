package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/taskhub-io/ms-go-taskhub/app/repository"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Operational maintenance commands",
}

var adminVerifyUserEmail string

var adminVerifyUserCmd = &cobra.Command{
	Use:   "verify-user",
	Short: "Mark a user's email as verified",
	RunE: func(cmd *cobra.Command, _ []string) error {
		userRepo, db, err := newUserRepositoryForAdminCommands()
		if err != nil {
			return err
		}
		defer db.Close()

		user, err := userRepo.FindByEmail(cmd.Context(), adminVerifyUserEmail)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("no user with email %q", adminVerifyUserEmail)
		}
		if user.IsEmailVerified {
			fmt.Printf("user %s is already verified\n", user.Username)
			return nil
		}

		user.IsEmailVerified = true
		user.EmailVerificationToken = sql.NullString{}
		user.EmailVerificationExpiresAt = sql.NullTime{}
		if err := userRepo.Update(cmd.Context(), user); err != nil {
			return err
		}

		fmt.Printf("user %s verified\n", user.Username)
		return nil
	},
}

var adminPurgeTokensCmd = &cobra.Command{
	Use:   "purge-tokens",
	Short: "Clear expired email verification and password reset tokens",
	RunE: func(cmd *cobra.Command, _ []string) error {
		userRepo, db, err := newUserRepositoryForAdminCommands()
		if err != nil {
			return err
		}
		defer db.Close()

		purged, err := userRepo.PurgeExpiredEphemeralTokens(cmd.Context(), time.Now())
		if err != nil {
			return err
		}

		fmt.Printf("purged %d expired token(s)\n", purged)
		return nil
	},
}

func init() {
	adminVerifyUserCmd.Flags().StringVar(&adminVerifyUserEmail, "email", "", "email of the user to verify")
	_ = adminVerifyUserCmd.MarkFlagRequired("email")

	adminCmd.AddCommand(adminVerifyUserCmd)
	adminCmd.AddCommand(adminPurgeTokensCmd)
	rootCmd.AddCommand(adminCmd)
}

func newUserRepositoryForAdminCommands() (*repository.UserRepository, *sql.DB, error) {
	_ = godotenv.Load()

	dsn := strings.TrimSpace(os.Getenv("MYSQL_DSN"))
	if dsn == "" {
		return nil, nil, errors.New("MYSQL_DSN environment variable is required")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, nil, err
	}
	if err = db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, nil, err
	}

	return repository.NewUserRepository(db), db, nil
}
