package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"paylinks/internal/auth"
	"paylinks/internal/config"
	"paylinks/internal/db"
	"paylinks/internal/handler"
	"paylinks/internal/logger"
	"paylinks/internal/service"
)

// env carries what the commands need from the outside world.
type env struct {
	out       io.Writer
	loadCfg   func() (*config.Config, error)
	openStore func(ctx context.Context, cfg config.StoreConfig, migrate bool, log *zap.Logger) (*db.Store, error)
	logger    func(cfg *config.Config) (*zap.Logger, error)
}

func defaultEnv() env {
	return env{
		out:       os.Stdout,
		loadCfg:   config.Load,
		openStore: db.OpenStore,
		logger: func(cfg *config.Config) (*zap.Logger, error) {
			return logger.New(cfg.App.LogPath, "linkctl", cfg.App.Debug)
		},
	}
}

func newRootCmd(e env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "linkctl",
		Short:         "Operate the payment links store",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(e.out)

	rootCmd.AddCommand(migrateCmd(e))
	rootCmd.AddCommand(getCmd(e))
	rootCmd.AddCommand(listCmd(e))
	rootCmd.AddCommand(tokenCmd(e))

	return rootCmd
}

func migrateCmd(e env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the links table (DynamoDB) or run AutoMigrate (SQL)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withStore(cmd.Context(), true, func(cfg *config.Config, links service.LinkService) error {
				if err := links.Ping(cmd.Context()); err != nil {
					return fmt.Errorf("store %s unreachable: %w", cfg.Store.Driver, err)
				}
				fmt.Fprintf(e.out, "store %s ready (table %s)\n", cfg.Store.Driver, cfg.Store.TableName)
				return nil
			})
		},
	}
}

func getCmd(e env) *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Print one payment link as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withStore(cmd.Context(), false, func(_ *config.Config, links service.LinkService) error {
				link, found, err := links.GetLink(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("payment link %s not found", args[0])
				}
				return e.printJSON(handler.NewLinkResponse(link))
			})
		},
	}
}

func listCmd(e env) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print payment links as JSON (store order)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withStore(cmd.Context(), false, func(_ *config.Config, links service.LinkService) error {
				page, err := links.ListLinks(cmd.Context(), limit)
				if err != nil {
					return err
				}
				items := make([]handler.LinkResponse, 0, len(page))
				for i := range page {
					items = append(items, handler.NewLinkResponse(&page[i]))
				}
				return e.printJSON(handler.ListLinksResponse{Items: items})
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", service.DefaultListLimit, "Maximum links (1-100)")

	return cmd
}

func tokenCmd(e env) *cobra.Command {
	var subject string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for simulated webhook notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := e.loadCfg()
			if err != nil {
				return err
			}
			if cfg.Webhook.SimulationSecret == "" {
				return errors.New("WEBHOOK_SIMULATION_SECRET is not set")
			}

			token, err := auth.NewJWTService(cfg.Webhook.SimulationSecret).GenerateSimulationToken(subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(e.out, token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&subject, "subject", "s", "linkctl", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", auth.SimulationTokenExpiry, "Token lifetime")

	return cmd
}

func (e env) withStore(ctx context.Context, migrate bool, fn func(*config.Config, service.LinkService) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := e.loadCfg()
	if err != nil {
		return err
	}
	log, err := e.logger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	store, err := e.openStore(ctx, cfg.Store, migrate, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	links := service.NewLinkService(store.Links, nil, cfg.Processor,
		service.WithLogger(log),
		service.WithStoreTimeout(cfg.Store.Timeout),
	)
	return fn(cfg, links)
}

func (e env) printJSON(v any) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
