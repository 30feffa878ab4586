package main

import (
	"context"
	"sort"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/cockroachdb/errors"
	"github.com/owasp/nestsearch/algolia"
	"github.com/owasp/nestsearch/inmemory"
	"github.com/owasp/nestsearch/internal/ddb"
	"github.com/segmentio/ksuid"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const (
	targetAlgolia  = "algolia"
	targetDynamoDB = "dynamodb"
)

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load the fixtures file into Algolia or into the DynamoDB source table",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "target",
				Usage: "Where to write: algolia or dynamodb",
				Value: targetAlgolia,
			},
			&cli.StringFlag{
				Name:    "table-name",
				Aliases: []string{"t"},
				Usage:   "DynamoDB table name, for --target dynamodb",
				EnvVars: []string{"TABLE_NAME"},
			},
		},
		Action: runSeed,
	}
}

func runSeed(c *cli.Context) error {
	ctx := c.Context
	logger, err := newLogger(c, nil)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	path := c.String("fixtures")
	if path == "" {
		return errors.New("seed needs --fixtures")
	}
	fx, err := inmemory.ReadFixturesFile(path)
	if err != nil {
		return err
	}
	records := prepareRecords(fx, func() string { return ksuid.New().String() })

	logger.Info("seeding",
		zap.String("fixtures", path),
		zap.String("target", c.String("target")),
		zap.Int("record_count", len(records)),
	)

	switch target := c.String("target"); target {
	case targetAlgolia:
		fetchSecrets, err := algoliaSecrets(c, logger)
		if err != nil {
			return err
		}
		return seedAlgolia(ctx, algolia.NewClient(fetchSecrets), records, logger)
	case targetDynamoDB:
		tableName := c.String("table-name")
		if tableName == "" {
			return errors.New("--target dynamodb needs --table-name")
		}
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to load AWS config")
		}
		return seedDynamoDB(ctx, dynamodb.NewFromConfig(cfg), tableName, records, logger)
	default:
		return errors.Newf("unknown seed target %q; use %s or %s", target, targetAlgolia, targetDynamoDB)
	}
}

// prepareRecords turns fixtures into source records ordered by index name and
// then fixture position. Records without an objectID get one from newID.
func prepareRecords(fx inmemory.Fixtures, newID func() string) []ddb.Record {
	names := make([]string, 0, len(fx))
	for name := range fx {
		names = append(names, name)
	}
	sort.Strings(names)

	var records []ddb.Record
	for _, name := range names {
		for _, fields := range fx[name] {
			object := make(map[string]any, len(fields))
			for k, v := range fields {
				if k != "objectID" {
					object[k] = v
				}
			}

			id, _ := fields["objectID"].(string)
			if id == "" {
				id = newID()
			}
			records = append(records, ddb.Record{ID: id, IndexName: name, Object: object})
		}
	}
	return records
}

type batchSaver interface {
	BatchSaveObjects(ctx context.Context, indexName string, objects []map[string]any) error
}

// seedAlgolia saves one batch per index.
func seedAlgolia(ctx context.Context, saver batchSaver, records []ddb.Record, logger *zap.Logger) error {
	var order []string
	batches := make(map[string][]map[string]any)
	for _, r := range records {
		if _, ok := batches[r.IndexName]; !ok {
			order = append(order, r.IndexName)
		}
		batches[r.IndexName] = append(batches[r.IndexName], r.SearchObject())
	}

	for _, name := range order {
		if err := saver.BatchSaveObjects(ctx, name, batches[name]); err != nil {
			return err
		}
		logger.Info("saved objects to Algolia", zap.String("index", name), zap.Int("count", len(batches[name])))
	}
	return nil
}

// seedDynamoDB writes every record to the source table; the stream sync
// function then indexes them.
func seedDynamoDB(ctx context.Context, api ddb.PutItemAPI, tableName string, records []ddb.Record, logger *zap.Logger) error {
	for i, r := range records {
		if err := ddb.PutRecord(ctx, api, tableName, r); err != nil {
			return errors.Wrapf(err, "failed to insert record %d", i+1)
		}
		logger.Debug("inserted record", zap.String("id", r.ID), zap.String("index", r.IndexName))
	}
	logger.Info("inserted records", zap.String("table", tableName), zap.Int("count", len(records)))
	return nil
}
