package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/cockroachdb/errors"
	"github.com/owasp/nestsearch/algolia"
	"github.com/owasp/nestsearch/internal/ddb"
	"github.com/owasp/nestsearch/internal/logging"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// IndexWriter is the part of *algolia.Client the handler writes through.
type IndexWriter interface {
	SaveObject(ctx context.Context, indexName string, object map[string]any) error
	DeleteObject(ctx context.Context, indexName string, objectID string) error
}

type Handler struct {
	writer IndexWriter
	logger *zap.Logger
}

func NewHandler(writer IndexWriter, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{writer: writer, logger: logger}
}

// HandleDynamoDBEvent applies each stream record to the search index, in
// order. Records that carry nothing to apply are logged and skipped; the first
// write failure stops the batch so Lambda retries it.
func (h *Handler) HandleDynamoDBEvent(ctx context.Context, e events.DynamoDBEvent) error {
	h.logger.Info("processing stream records", zap.Int("record_count", len(e.Records)))

	for _, record := range e.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("failed to process record", zap.String("event_id", record.EventID), zap.Error(err))
			return err
		}
	}

	return nil
}

func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	change, err := ddb.ParseStreamRecord(record)
	if errors.Is(err, ddb.ErrSkip) {
		h.logger.Warn("skipping record", zap.String("event_id", record.EventID), zap.String("event_name", record.EventName), zap.Error(err))
		return nil
	}
	if err != nil {
		return err
	}

	r := change.Record
	switch change.Operation {
	case ddb.OperationRemove:
		h.logger.Info("deleting object", zap.String("object_id", r.ID), zap.String("index", r.IndexName))
		return h.writer.DeleteObject(ctx, r.IndexName, r.ID)
	default:
		h.logger.Info("saving object", zap.String("object_id", r.ID), zap.String("index", r.IndexName))
		return h.writer.SaveObject(ctx, r.IndexName, r.SearchObject())
	}
}

func main() {
	app := &cli.App{
		Name:  "sync-index",
		Usage: "Sync DynamoDB stream events to the Algolia search indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Environment name for AWS Secrets Manager (takes precedence over API key/ID flags)",
				EnvVars: []string{"ENV", "ENVIRONMENT"},
			},
			&cli.StringFlag{
				Name:    "algolia-app-id",
				Usage:   "Algolia application ID",
				EnvVars: []string{"ALGOLIA_APP_ID"},
			},
			&cli.StringFlag{
				Name:    "algolia-api-key",
				Usage:   "Algolia API key with write access",
				EnvVars: []string{"ALGOLIA_API_KEY"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "info",
			},
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		zap.L().Error("application failed", zap.Error(err))
		os.Exit(1)
	}
}

func runAction(c *cli.Context) error {
	ctx := c.Context

	logger, err := logging.New(logging.Options{Level: c.String("log-level"), JSON: true})
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck
	zap.ReplaceGlobals(logger)

	env := c.String("env")
	appID := c.String("algolia-app-id")
	apiKey := c.String("algolia-api-key")

	var fetchSecrets algolia.FetchSecrets
	switch {
	case env != "":
		logger.Info("using AWS Secrets Manager for credentials", zap.String("environment", env))
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to load AWS config")
		}
		fetchSecrets = algolia.AWSSecrets(ctx, secretsmanager.NewFromConfig(cfg), env)
	case appID != "" && apiKey != "":
		logger.Info("using static credentials from flags")
		fetchSecrets = algolia.StaticSecrets(appID, apiKey)
	default:
		logger.Info("using environment variables for credentials")
		fetchSecrets = algolia.EnvSecrets()
	}

	handler := NewHandler(algolia.NewClient(fetchSecrets), logger)

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") == "" {
		logger.Info("function cannot run outside of AWS Lambda environment")
		return nil
	}
	lambda.Start(handler.HandleDynamoDBEvent)
	return nil
}
