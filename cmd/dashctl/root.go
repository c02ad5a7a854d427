package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocount/dashboard/internal/identity/entity"
	"github.com/gocount/dashboard/internal/identity/outbound/db"
	"github.com/gocount/dashboard/internal/identity/usecase"
	"github.com/gocount/dashboard/internal/pkg/clock"
	"github.com/gocount/dashboard/internal/pkg/config"
	"github.com/gocount/dashboard/internal/pkg/hash"
	"github.com/gocount/dashboard/internal/pkg/instrument"
	"github.com/gocount/dashboard/internal/pkg/migration"
	"github.com/gocount/dashboard/internal/pkg/uid"
	"github.com/gocount/dashboard/internal/pkg/validator"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

type seeder interface {
	CreateOrganization(ctx context.Context, in usecase.CreateOrganizationInput) (*entity.Organization, error)
	ProvisionUser(ctx context.Context, in usecase.ProvisionUserInput) (*usecase.ProvisionUserOutput, error)
}

// env holds what the commands touch outside the process, swapped in tests.
type env struct {
	loadConfig func(path string) (config.Config, error)
	migrate    func(dsn, direction string) error
	newSeeder  func(ctx context.Context, cfg config.Config, dsn string) (seeder, func(), error)
}

func defaultEnv() env {
	return env{
		loadConfig: func(path string) (config.Config, error) {
			cfg, err := config.NewViper(path)
			if err != nil {
				return nil, err
			}
			return cfg, nil
		},
		migrate:   migration.Run,
		newSeeder: openSeeder,
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func newRootCmd(e env) *cobra.Command {
	var (
		configPath  = envOr("CONFIG_PATH", "./config/config.yaml")
		databaseURL = envOr("DATABASE_URL", "")
	)

	root := &cobra.Command{
		Use:           "dashctl",
		Short:         "Administrative commands for the gocount dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", configPath, "Path to config.yaml (env CONFIG_PATH)")
	root.PersistentFlags().StringVar(&databaseURL, "database-url", databaseURL, "Postgres DSN, overrides database.url (env DATABASE_URL)")

	// settings loads the config file and resolves the DSN. The flag wins over the file.
	settings := func() (config.Config, string, error) {
		cfg, err := e.loadConfig(configPath)
		if err != nil {
			if databaseURL == "" {
				return nil, "", fmt.Errorf("load config %s: %w", configPath, err)
			}
			cfg = nil
		}

		dsn := databaseURL
		if dsn == "" && cfg != nil {
			dsn = cfg.GetString("database.url")
		}
		if strings.TrimSpace(dsn) == "" {
			return nil, "", errors.New("database url is empty, set --database-url or database.url")
		}

		return cfg, dsn, nil
	}

	root.AddCommand(newMigrateCmd(e, settings))
	root.AddCommand(newSeedCmd(e, settings))

	return root
}

func newMigrateCmd(e env, settings func() (config.Config, string, error)) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back the database schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{migration.Up, migration.Down},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, dsn, err := settings()
			if err != nil {
				return err
			}
			if cfg != nil {
				defer cfg.Close()
			}

			if err := e.migrate(dsn, args[0]); err != nil {
				return fmt.Errorf("migrate %s: %w", args[0], err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: done\n", args[0])
			return nil
		},
	}
}

func newSeedCmd(e env, settings func() (config.Config, string, error)) *cobra.Command {
	var orgName, email, password string

	cmd := &cobra.Command{
		Use:     "seed",
		Short:   "Create an organization and a user that can log in",
		Example: `  dashctl seed --org "Count" --email a@x.com --password hunter2`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, dsn, err := settings()
			if err != nil {
				return err
			}
			if cfg == nil {
				return errors.New("seed needs the config file for hash.bcrypt settings")
			}
			defer cfg.Close()

			s, closeFn, err := e.newSeeder(cmd.Context(), cfg, dsn)
			if err != nil {
				return err
			}
			defer closeFn()

			return seed(cmd.Context(), cmd.OutOrStdout(), s, orgName, email, password)
		},
	}

	cmd.Flags().StringVar(&orgName, "org", "", "Organization name, slugified for ingest")
	cmd.Flags().StringVar(&email, "email", "", "User email")
	cmd.Flags().StringVar(&password, "password", "", "User password")
	_ = cmd.MarkFlagRequired("org")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func seed(ctx context.Context, out io.Writer, s seeder, orgName, email, password string) error {
	org, err := s.CreateOrganization(ctx, usecase.CreateOrganizationInput{Name: orgName})
	if err != nil {
		return fmt.Errorf("create organization: %w", err)
	}

	res, err := s.ProvisionUser(ctx, usecase.ProvisionUserInput{
		OrgSlug:  org.Slug,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("provision user: %w", err)
	}

	fmt.Fprintf(out, "organization %q slug=%s id=%d\n", org.Name, org.Slug, org.ID)
	if res.Created {
		fmt.Fprintf(out, "user %s created\n", res.User.Email)
	} else {
		fmt.Fprintf(out, "user %s already exists\n", res.User.Email)
	}

	return nil
}

// openSeeder builds the identity usecase with only what provisioning needs.
func openSeeder(ctx context.Context, cfg config.Config, dsn string) (seeder, func(), error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	v, err := validator.NewV10Validator()
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	snow, err := uid.NewSnowflake(cfg.GetInt64("app.node_id"))
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	ins := instrument.NewNoop()
	uc := usecase.New(usecase.Dependency{
		RepoDB:     db.NewDB(pool, ins),
		Validator:  v,
		Config:     cfg,
		Bcrypt:     hash.NewBcrypt(cfg.GetInt("hash.bcrypt.cost"), cfg.GetString("hash.bcrypt.pepper")),
		UID:        snow,
		Clock:      clock.New(),
		Instrument: ins,
	})

	return uc, pool.Close, nil
}
