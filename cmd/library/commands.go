package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/Astemirdum/library-catalog/library/app"
	"github.com/Astemirdum/library-catalog/library/config"
	"github.com/Astemirdum/library-catalog/pkg/auth"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

type rootFlags struct {
	logLevel string
	port     string
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	serve := newServeCmd(&flags)

	root := &cobra.Command{
		Use:           "library",
		Short:         "Library catalog service",
		Long:          "library serves the catalog REST API and runs its maintenance tasks.",
		SilenceUsage:  true,
		SilenceErrors: true,
		// a bare invocation starts the API server
		RunE: serve.RunE,
	}
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flags.port, "port", "", "HTTP port override")

	root.AddCommand(serve, newMigrateCmd(&flags), newSweepCmd(&flags), newCreateUserCmd(&flags))
	return root
}

func loadConfig(flags *rootFlags) (*config.Config, error) {
	opts := []config.Option{config.WithWriteTimeout(time.Minute)}
	if flags.logLevel != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(flags.logLevel)); err != nil {
			return nil, fmt.Errorf("log-level: %w", err)
		}
		opts = append(opts, config.WithLogLevel(level))
	}
	if flags.port != "" {
		opts = append(opts, config.WithPort(flags.port))
	}
	return config.NewConfig(opts...), nil
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			app.Run(cfg)
			return nil
		},
	}
}

func newMigrateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			return app.Migrate(cmd.Context(), cfg)
		},
	}
}

func newSweepCmd(flags *rootFlags) *cobra.Command {
	var publish bool
	cmd := &cobra.Command{
		Use:   "sweep-overdue",
		Short: "Mark borrowed books past their due date as overdue",
		Long: `sweep-overdue flips every BORROWED record whose due date has passed to OVERDUE.
With --publish the request is sent to the Kafka sweep topic and handled by a running server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			return app.SweepOverdue(cmd.Context(), cfg, publish)
		},
	}
	cmd.Flags().BoolVar(&publish, "publish", false, "publish a sweep request to Kafka instead of touching the database")
	return cmd
}

func newCreateUserCmd(flags *rootFlags) *cobra.Command {
	var username, password, email, role string
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an API user, e.g. the first administrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			user, err := app.CreateUser(cmd.Context(), cfg, username, password, email, auth.Role(strings.ToUpper(role)))
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %s created with id %d (%s)\n", user.Username, user.ID, user.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&password, "password", "", "password (6-72 characters)")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleAdmin), "ADMIN, LIBRARIAN or STAFF")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
