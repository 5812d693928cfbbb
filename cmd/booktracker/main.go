package main

import (
	"context"
	"fmt"
	stdLog "log"
	"os"
	"strconv"

	"github.com/Astemirdum/booktracker/booktracker/app"
	"github.com/Astemirdum/booktracker/booktracker/config"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		stdLog.Fatal("load envs from .env ", err)
	}
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type flags struct {
	apiURL string
	route  string
	debug  bool
}

func (f *flags) config() config.Config {
	ops := []config.Option{
		config.WithAPIURL(f.apiURL),
		config.WithRoute(f.route),
	}
	if f.debug {
		ops = append(ops, config.WithLogLevel(zapcore.DebugLevel))
	}
	return config.NewConfig(ops...)
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:           "booktracker",
		Short:         "Browse and edit the book catalog",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), f.config(), os.Stdin, os.Stdout)
		},
	}
	root.PersistentFlags().StringVar(&f.apiURL, "api-url", "", "books API base URL (BOOKTRACKER_API_URL)")
	root.PersistentFlags().StringVar(&f.route, "route", "", "start-up route, e.g. /books?status=COMPLETED (BOOKTRACKER_ROUTE)")
	root.PersistentFlags().BoolVar(&f.debug, "debug", false, "debug logging")

	root.AddCommand(
		&cobra.Command{
			Use:   "shell",
			Short: "Interactive book list (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return app.Run(cmd.Context(), f.config(), os.Stdin, os.Stdout)
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "Print all books",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withClient(f, func(ctx context.Context, c *app.Client) error {
					books, err := c.Books.ListAll(ctx)
					if err != nil {
						return err
					}
					app.PrintBooks(cmd.OutOrStdout(), books)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Print one book",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				return withClient(f, func(ctx context.Context, c *app.Client) error {
					book, err := c.Books.Get(ctx, id)
					if err != nil {
						return err
					}
					app.PrintBook(cmd.OutOrStdout(), book)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete one book",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				return withClient(f, func(ctx context.Context, c *app.Client) error {
					if err := c.Books.Delete(ctx, id); err != nil {
						return err
					}
					c.Notifier.Success(fmt.Sprintf("Deleted book %d", id))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "fake-server",
			Short: "Serve an in-memory books API (FAKE_HTTP_HOST, FAKE_HTTP_PORT)",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				app.RunFakeServer(f.config())
			},
		},
	)
	return root
}

func withClient(f *flags, fn func(ctx context.Context, c *app.Client) error) error {
	c, err := app.NewClient(f.config(), os.Stdout)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(context.Background(), c)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid book id %q", s)
	}
	return id, nil
}
