package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/yukikurage/board-collab-api/internal/config"
	"github.com/yukikurage/board-collab-api/internal/database"
	"github.com/yukikurage/board-collab-api/internal/logger"
	"github.com/yukikurage/board-collab-api/internal/models"
	"github.com/yukikurage/board-collab-api/internal/repository"
	"github.com/yukikurage/board-collab-api/internal/services"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the state shared by every subcommand.
type app struct {
	cfg *config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "board-api",
		Short:         "Board collaboration API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a.cfg = cfg
			a.log = logger.New(cfg.LogLevel, cfg.LogFormat)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server (default)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema",
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withDB(func(db *gorm.DB) error {
					return database.Migrate(cmd.Context(), db, a.log)
				})
			},
		},
		a.newPromoteCmd(),
	)

	return cmd
}

func (a *app) newPromoteCmd() *cobra.Command {
	var identifier, role string

	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Set the platform role of a registered user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDB(func(db *gorm.DB) error {
				userService := services.NewUserService(repository.NewUserRepository(db))
				user, err := userService.Promote(cmd.Context(), identifier, models.PlatformRole(role))
				if err != nil {
					return err
				}
				a.log.Info().Uint64("user_id", user.ID).Str("role", string(user.Role)).Msg("platform role updated")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&identifier, "identifier", "", "email or phone of the user")
	cmd.Flags().StringVar(&role, "role", string(models.PlatformRoleSuperAdmin), "USER, ADMIN or SUPERADMIN")
	_ = cmd.MarkFlagRequired("identifier")

	return cmd
}

// withDB opens the database for the duration of fn.
func (a *app) withDB(fn func(db *gorm.DB) error) error {
	db, err := database.Connect(a.cfg, a.log)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			a.log.Error().Err(err).Msg("close database")
		}
	}()
	return fn(db)
}
