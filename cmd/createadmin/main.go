package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liyu1981.xyz/maintenance-service/pkg/auth"
	"liyu1981.xyz/maintenance-service/pkg/common"
	"liyu1981.xyz/maintenance-service/pkg/db"
	"liyu1981.xyz/maintenance-service/pkg/maintenance"
	"liyu1981.xyz/maintenance-service/pkg/models"
)

const envKeyAdminPassword = "ADMIN_PASSWORD"

type adminOptions struct {
	Username string
	Email    string
	FullName string
	Password string
}

var opts adminOptions

var rootCmd = &cobra.Command{
	Use:   "createadmin",
	Short: "Create an admin account, or reset an existing one",
	Long: "Creates an admin user with a bcrypt hashed password. When the username already exists " +
		"the account is promoted to admin, re-activated and given the new password.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if opts.Password == "" {
			opts.Password = os.Getenv(envKeyAdminPassword)
		}

		cfg, err := common.LoadConfig()
		if err != nil {
			return err
		}
		defer common.SyncLogger()

		dialector, err := db.DialectorFromConfig(cfg)
		if err != nil {
			return err
		}
		dbInstance, err := db.New(dialector, db.Options{PoolSize: 1})
		if err != nil {
			return err
		}
		defer dbInstance.Close()

		m := maintenance.New(dbInstance, auth.NewBcryptHasher(auth.DefaultBcryptCost))
		user, created, err := ensureAdmin(cmd.Context(), m, opts)
		if err != nil {
			return err
		}

		verb := "updated"
		if created {
			verb = "created"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "admin %q %s (id %d)\n", user.Username, verb, user.ID)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&opts.Username, "username", "admin", "admin username")
	rootCmd.Flags().StringVar(&opts.Email, "email", "admin@example.com", "admin email")
	rootCmd.Flags().StringVar(&opts.FullName, "full-name", "Administrator", "admin full name")
	rootCmd.Flags().StringVar(&opts.Password, "password", "", "admin password (or "+envKeyAdminPassword+")")
}

// ensureAdmin creates the admin or resets the existing account with the same
// username. It runs without an actor, so no activity is recorded.
func ensureAdmin(ctx context.Context, m *maintenance.Maintenance, o adminOptions) (*models.UserView, bool, error) {
	if len(o.Password) < 6 {
		return nil, false, errors.New("password must be at least 6 characters")
	}

	users, err := m.User.ListUsers(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, u := range users {
		if u.Username != o.Username {
			continue
		}
		role := models.RoleAdmin
		active := true
		user, err := m.User.UpdateUser(ctx, u.ID, &models.UserPatch{
			Password: &o.Password,
			Role:     &role,
			IsActive: &active,
		})
		if err != nil {
			return nil, false, err
		}
		common.GetLogger().Info("Reset admin account", zap.Uint("id", user.ID))
		return user, false, nil
	}

	user, err := m.User.CreateUser(ctx, &models.NewUser{
		Username: o.Username,
		FullName: o.FullName,
		Email:    o.Email,
		Password: o.Password,
		Role:     models.RoleAdmin,
	})
	if err != nil {
		return nil, false, err
	}
	common.GetLogger().Info("Created admin account", zap.Uint("id", user.ID))
	return user, true, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
