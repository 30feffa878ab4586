// Command nest serves, browses, queries and seeds the OWASP search indexes.
package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/owasp/nestsearch"
	"github.com/owasp/nestsearch/algolia"
	"github.com/owasp/nestsearch/inmemory"
	"github.com/owasp/nestsearch/internal/logging"
	"github.com/owasp/nestsearch/internal/theme"
	"github.com/owasp/nestsearch/internal/tui"
	"github.com/owasp/nestsearch/internal/web"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	backendAlgolia = "algolia"
	backendMemory  = "memory"

	defaultHitsPerPage = 10
)

func main() {
	// The logger is built per command, after flag parsing.
	if err := loadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "nest: failed to load .env: %v\n", err)
	}

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "nest: %v\n", err)
		os.Exit(1)
	}
}

// loadDotEnv reads path into the environment. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "nest",
		Usage: "Search OWASP projects, chapters, committees, issues and community members",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "backend",
				Usage:   "Search backend: algolia or memory",
				EnvVars: []string{"NEST_BACKEND"},
				Value:   backendAlgolia,
			},
			&cli.StringFlag{
				Name:    "fixtures",
				Usage:   "Fixtures JSON file for the memory backend and the seed command",
				EnvVars: []string{"NEST_FIXTURES"},
			},
			&cli.StringFlag{
				Name:    "algolia-secret-arn",
				Usage:   "ARN of AWS Secrets Manager secret containing Algolia credentials",
				EnvVars: []string{"ALGOLIA_SECRET_ARN"},
			},
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Environment name for AWS Secrets Manager; credentials are read from {env}/algolia",
				EnvVars: []string{"ENV", "ENVIRONMENT"},
			},
			&cli.StringFlag{
				Name:    "algolia-app-id",
				Usage:   "Algolia application ID",
				EnvVars: []string{"ALGOLIA_APP_ID"},
			},
			&cli.StringFlag{
				Name:    "algolia-api-key",
				Usage:   "Algolia API key",
				EnvVars: []string{"ALGOLIA_API_KEY"},
			},
			&cli.Float64Flag{
				Name:    "search-rps",
				Usage:   "Maximum searches per second sent to the backend; 0 disables throttling",
				EnvVars: []string{"NEST_SEARCH_RPS"},
			},
			&cli.IntFlag{
				Name:    "hits-per-page",
				Usage:   "Results per page",
				EnvVars: []string{"NEST_HITS_PER_PAGE"},
				Value:   defaultHitsPerPage,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "Also write logs to this file, rotated by size",
				EnvVars: []string{"LOG_FILE"},
			},
			&cli.BoolFlag{
				Name:    "log-json",
				Usage:   "Write logs as JSON",
				EnvVars: []string{"LOG_JSON"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			browseCommand(),
			queryCommand(),
			seedCommand(),
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the search pages over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "Listen address",
				EnvVars: []string{"NEST_ADDR"},
				Value:   ":8080",
			},
		},
		Action: func(c *cli.Context) error {
			logger, err := newLogger(c, nil)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			opener, err := openBackend(c, logger)
			if err != nil {
				return err
			}

			srv, err := web.NewServer(opener,
				web.WithLogger(logger),
				web.WithHitsPerPage(c.Int("hits-per-page")),
			)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx, c.String("addr"))
		},
	}
}

func browseCommand() *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "Browse the indexes in an interactive terminal UI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "preferences",
				Usage:   "Preferences file; defaults to the user config directory",
				EnvVars: []string{"NEST_PREFERENCES"},
			},
		},
		Action: func(c *cli.Context) error {
			// The terminal belongs to the UI; logs only go to --log-file.
			logger, err := newLogger(c, io.Discard)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			opener, err := openBackend(c, logger)
			if err != nil {
				return err
			}

			path := c.String("preferences")
			if path == "" {
				if path, err = theme.DefaultPath(); err != nil {
					return err
				}
			}

			return tui.Run(c.Context, opener,
				tui.WithLogger(logger),
				tui.WithPreferences(theme.NewFileStore(path)),
				tui.WithHitsPerPage(c.Int("hits-per-page")),
			)
		},
	}
}

func newLogger(c *cli.Context, console io.Writer) (*zap.Logger, error) {
	logger, err := logging.New(logging.Options{
		Level:   c.String("log-level"),
		JSON:    c.Bool("log-json"),
		File:    c.String("log-file"),
		Console: console,
	})
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

// openBackend returns the Opener selected by --backend, throttled when
// --search-rps is set.
func openBackend(c *cli.Context, logger *zap.Logger) (nestsearch.Opener, error) {
	var opener nestsearch.Opener
	switch backend := strings.ToLower(strings.TrimSpace(c.String("backend"))); backend {
	case backendMemory:
		path := c.String("fixtures")
		if path == "" {
			return nil, errors.New("the memory backend needs --fixtures")
		}
		store := inmemory.NewStore()
		if err := store.LoadFile(path); err != nil {
			return nil, err
		}
		logger.Info("loaded fixtures", zap.String("path", path), zap.Strings("indexes", store.Names()))
		opener = store
	case backendAlgolia:
		fetchSecrets, err := algoliaSecrets(c, logger)
		if err != nil {
			return nil, err
		}
		opener = algolia.NewClient(fetchSecrets)
	default:
		return nil, errors.Newf("unknown backend %q; use %s or %s", backend, backendAlgolia, backendMemory)
	}

	return nestsearch.ThrottleOpener(opener, newLimiter(c.Float64("search-rps"))), nil
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// algoliaSecrets picks the credential source: a secret ARN, then an
// environment secret, then explicit flags, then ALGOLIA_* variables.
func algoliaSecrets(c *cli.Context, logger *zap.Logger) (algolia.FetchSecrets, error) {
	ctx := c.Context
	secretArn := strings.TrimSpace(c.String("algolia-secret-arn"))
	env := strings.TrimSpace(c.String("env"))
	appID := c.String("algolia-app-id")
	apiKey := c.String("algolia-api-key")

	switch {
	case secretArn != "" || env != "":
		client, err := secretsClient(ctx)
		if err != nil {
			return nil, err
		}
		if secretArn != "" {
			logger.Info("using AWS Secrets Manager for Algolia credentials", zap.String("secret_arn", secretArn))
			return algolia.AWSSecretsFromARN(ctx, client, secretArn), nil
		}
		logger.Info("using AWS Secrets Manager for Algolia credentials", zap.String("environment", env))
		return algolia.AWSSecrets(ctx, client, env), nil
	case appID != "" && apiKey != "":
		return algolia.StaticSecrets(appID, apiKey), nil
	default:
		return algolia.EnvSecrets(), nil
	}
}

func secretsClient(ctx context.Context) (*secretsmanager.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}
	return secretsmanager.NewFromConfig(cfg), nil
}
