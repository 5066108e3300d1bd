package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"quiz-rewards-service/internal/app"
	"quiz-rewards-service/internal/config"
	"quiz-rewards-service/internal/domain"
	"quiz-rewards-service/internal/infra/postgres"
)

// NewCreateAdminCmd seeds a superadmin account so a fresh deployment can
// log in and manage content.
func NewCreateAdminCmd(configPath *string) *cobra.Command {
	var (
		name     string
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a superadmin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return createAdmin(cmd.Context(), *configPath, name, email, password)
		},
	}
	cmd.Flags().StringVar(&name, "name", "Super Admin", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email (required)")
	cmd.Flags().StringVar(&password, "password", "", "login password (required)")
	return cmd
}

func createAdmin(ctx context.Context, configPath, name, email, password string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	accounts := app.NewAccountService(
		postgres.NewStudentRepository(pool),
		postgres.NewAdminRepository(pool),
		postgres.NewUserRepository(pool),
	)
	admin, err := accounts.CreateAdmin(ctx, domain.Admin{
		Name:  name,
		Email: email,
		Role:  "superadmin",
	}, password)
	if err != nil {
		return err
	}
	log.Printf("created superadmin %s (%s)", admin.Email, admin.ID)
	return nil
}
