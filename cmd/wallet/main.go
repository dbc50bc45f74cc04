package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/gowallet/internal/adapter/idgen"
	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/infrastructure/config"
	"github.com/iho/gowallet/internal/infrastructure/logger"
	"github.com/iho/gowallet/internal/infrastructure/postgres"
	"github.com/iho/gowallet/internal/infrastructure/storage"
	"github.com/iho/gowallet/internal/usecase"
)

// cli carries the process streams and flags shared by every command.
type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	dataDir  string
	logLevel string

	// open builds the use cases; replaced in tests.
	open func(ctx context.Context) (*services, func(), error)
}

func main() {
	c := &cli{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
	c.open = c.openServices

	if err := newRootCmd(c).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(c *cli) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "wallet",
		Short:         "Digital wallet",
		Long:          `An interactive personal wallet: deposits, withdrawals, transfers, loans and daily interest.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), func(ctx context.Context, s *Session) error {
				return s.Welcome(ctx)
			})
		},
	}
	rootCmd.SetIn(c.in)
	rootCmd.SetOut(c.out)
	rootCmd.SetErr(c.errOut)

	rootCmd.PersistentFlags().StringVar(&c.dataDir, "data-dir", "", "Directory holding wallet files (overrides WALLET_DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "Log level written to stderr")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "register",
			Short: "Register a new wallet",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withSession(cmd.Context(), func(ctx context.Context, s *Session) error {
					return ignoreClosed(s.Register(ctx))
				})
			},
		},
		&cobra.Command{
			Use:   "login <wallet-id>",
			Short: "Log in and open the wallet menu",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withSession(cmd.Context(), func(ctx context.Context, s *Session) error {
					return loginFailure(s.LoginAndRun(ctx, args[0]))
				})
			},
		},
		&cobra.Command{
			Use:   "history <wallet-id>",
			Short: "Print the transaction history of a wallet",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withSession(cmd.Context(), func(ctx context.Context, s *Session) error {
					if _, err := s.Login(ctx, args[0]); err != nil {
						return loginFailure(err)
					}
					return s.history(ctx, args[0])
				})
			},
		},
		newInterestCmd(c),
		newMigrateCmd(c),
	)

	return rootCmd
}

func newInterestCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "interest <wallet-id>...",
		Short: "Accrue daily interest on the given wallets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			var errs []error
			for _, id := range args {
				out, err := svc.wallet.AddDailyInterest(cmd.Context(), id)
				if err != nil {
					fmt.Fprintf(c.out, "%s: %s\n", id, err)
					errs = append(errs, fmt.Errorf("%s: %w", id, err))
					continue
				}
				fmt.Fprintf(c.out, "%s: %d days, interest %s, balance %s\n",
					id, out.Result.Days, money(out.Result.Interest), money(out.Account.Balance))
			}
			return errors.Join(errs...)
		},
	}
}

func newMigrateCmd(c *cli) *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the postgres store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := c.load()
			if err != nil {
				return err
			}
			if cfg.StorageDriver != config.StoragePostgres {
				return fmt.Errorf("migrate requires STORAGE_DRIVER=%s, got %q", config.StoragePostgres, cfg.StorageDriver)
			}

			if down {
				return postgres.RunMigrationsDown(cfg.DatabaseURL, log)
			}
			return postgres.RunMigrations(cfg.DatabaseURL, log)
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "Roll back the last migration")

	return cmd
}

func (c *cli) withSession(ctx context.Context, fn func(context.Context, *Session) error) error {
	svc, closeFn, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	return fn(ctx, NewSession(c.in, c.out, svc))
}

func (c *cli) load() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load configuration: %w", err)
	}
	if c.dataDir != "" {
		cfg.DataDir = c.dataDir
	}

	log := logger.New(logger.Config{
		Level:  c.logLevel,
		Format: "console",
		Output: c.errOut,
	})
	return cfg, log, nil
}

func (c *cli) openServices(ctx context.Context) (*services, func(), error) {
	cfg, log, err := c.load()
	if err != nil {
		return nil, nil, err
	}

	policy, err := cfg.Policy()
	if err != nil {
		return nil, nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	wallet := usecase.NewWalletUseCase(usecase.Config{
		Repo:   store.Repo,
		Ledger: domain.NewLedger(policy, idgen.NewULIDGenerator()),
		Clock:  usecase.SystemClock{Location: loc},
		Logger: &log,
	})

	return &services{
		wallet:   wallet,
		accounts: usecase.NewAccountUseCase(wallet),
	}, store.Close, nil
}

// loginFailure turns a reported login rejection into a non-zero exit.
func loginFailure(err error) error {
	switch {
	case err == nil, errors.Is(err, errInputClosed):
		return nil
	case errors.Is(err, domain.ErrAccountNotFound), errors.Is(err, domain.ErrAuthFailure):
		return errors.New("login failed")
	default:
		return err
	}
}
