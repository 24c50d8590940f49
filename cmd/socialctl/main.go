// Command socialctl inspects and seeds the store configured for the server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/anonto42/codecircle/backend/internal/app"
	"github.com/anonto42/codecircle/backend/internal/services"
	"github.com/anonto42/codecircle/backend/pkg/config"
	"github.com/anonto42/codecircle/backend/pkg/logger"
)

func main() {
	if err := newCLI().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newCLI() *cli.App {
	return &cli.App{
		Name:  "socialctl",
		Usage: "inspect and seed the codecircle store",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log what the store layer does"},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				return logger.Init("development")
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "trending",
				Usage: "print the most used tags",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "days", Value: services.DefaultTrendingDays, Usage: "window in days"},
					&cli.IntFlag{Name: "limit", Value: services.DefaultTrendingLimit, Usage: "number of tags"},
				},
				Action: func(c *cli.Context) error {
					return withApp(c.Context, func(a *app.App) error {
						topics, err := a.Trending.Trending(c.Context, c.Int("days"), c.Int("limit"))
						if err != nil {
							return err
						}
						renderTrending(c.App.Writer, topics)
						return nil
					})
				},
			},
			{
				Name:      "tag",
				Usage:     "list posts carrying a tag",
				ArgsUsage: "<tag>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page", Value: 1},
					&cli.IntFlag{Name: "limit", Value: services.DefaultTagPageSize},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("tag requires exactly one argument", 2)
					}
					return withApp(c.Context, func(a *app.App) error {
						page, err := a.Tags.ByTag(c.Context, c.Args().First(), c.Int("page"), c.Int("limit"))
						if err != nil {
							return err
						}
						renderTagPage(c.App.Writer, page)
						return nil
					})
				},
			},
			{
				Name:  "seed",
				Usage: "create demo users, follows and posts",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "users", Value: 5},
					&cli.IntFlag{Name: "posts", Value: 3, Usage: "posts per user"},
				},
				Action: func(c *cli.Context) error {
					return withApp(c.Context, func(a *app.App) error {
						res, err := seed(c.Context, a, c.Int("users"), c.Int("posts"))
						if err != nil {
							return err
						}
						fmt.Fprintf(c.App.Writer, "created %d users and %d posts\n", res.Users, res.Posts)
						return nil
					})
				},
			},
		},
	}
}

// withApp opens the configured store for the duration of fn.
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.CloseDB()

	a, err := app.New(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer a.Close()

	logger.Debug("store opened", zap.String("driver", cfg.StoreDriver))
	return fn(a)
}
