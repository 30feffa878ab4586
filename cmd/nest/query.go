package main

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/owasp/nestsearch"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const defaultTimeout = 5 * time.Second

func queryCommand() *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "Run one search and print the page as JSON",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "index",
				Aliases:  []string{"i"},
				Usage:    "Index name: projects, chapters, committees, users or issues",
				EnvVars:  []string{"NEST_INDEX"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Query string to search for; positional arg is a fallback",
			},
			&cli.IntFlag{
				Name:    "page",
				Aliases: []string{"p"},
				Usage:   "1-based page number",
				Value:   1,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Timeout for the search request",
				Value: defaultTimeout,
			},
			&cli.StringSliceFlag{
				Name:  "filter",
				Usage: "Filter in field=value format; repeatable",
			},
		},
		Action: runQuery,
	}
}

func runQuery(c *cli.Context) error {
	logger, err := newLogger(c, nil)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	query := strings.TrimSpace(c.String("query"))
	if query == "" && c.NArg() > 0 {
		query = strings.TrimSpace(c.Args().First())
	}
	indexName := strings.TrimSpace(c.String("index"))

	page := c.Int("page")
	if page < 1 {
		logger.Warn("page must be positive; using the first page", zap.Int("page", page))
		page = 1
	}

	timeout := c.Duration("timeout")
	if timeout <= 0 {
		logger.Warn("timeout must be positive; using default", zap.Duration("timeout", timeout), zap.Duration("default", defaultTimeout))
		timeout = defaultTimeout
	}

	filterOptions, err := buildFilterOptions(c.StringSlice("filter"))
	if err != nil {
		return errors.Wrap(err, "invalid filter")
	}

	opener, err := openBackend(c, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, timeout)
	defer cancel()

	opts := []nestsearch.SearchOption{
		nestsearch.WithPage(page),
		nestsearch.WithHitsPerPage(c.Int("hits-per-page")),
	}
	opts = append(opts, filterOptions...)

	logger.Info("executing query",
		zap.String("index", indexName),
		zap.String("query", query),
		zap.Int("page", page),
		zap.Int("filter_count", len(filterOptions)),
		zap.Duration("timeout", timeout),
	)

	results, err := opener.Open(indexName).Search(ctx, query, opts...)
	if err != nil {
		return errors.Wrap(err, "search failed")
	}

	return printResults(c.App.Writer, indexName, results)
}

func buildFilterOptions(raw []string) ([]nestsearch.SearchOption, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	options := make([]nestsearch.SearchOption, 0, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item == "" {
			return nil, errors.New("filter cannot be empty")
		}

		field, value, ok := strings.Cut(item, "=")
		if !ok {
			return nil, errors.Newf("filter must be in field=value format: %q", item)
		}

		field = strings.TrimSpace(field)
		value = strings.TrimSpace(value)
		if field == "" || value == "" {
			return nil, errors.Newf("filter field and value must be non-empty: %q", item)
		}

		options = append(options, nestsearch.Eq(field, value))
	}

	return options, nil
}

type hitOutput struct {
	ObjectID string         `json:"objectID"`
	Fields   map[string]any `json:"fields"`
}

type pageOutput struct {
	Index       string      `json:"index"`
	Query       string      `json:"query"`
	Page        int         `json:"page"`
	TotalPages  int         `json:"total_pages"`
	Total       int64       `json:"total"`
	HitsPerPage int         `json:"hits_per_page"`
	Took        int64       `json:"took_ms"`
	Hits        []hitOutput `json:"hits"`
}

// printResults writes res with the idx_ prefix stripped from every field.
func printResults(w io.Writer, indexName string, res *nestsearch.Page) error {
	out := pageOutput{Index: indexName, Hits: []hitOutput{}}
	if res != nil {
		out.Query = res.Query
		out.Page = res.CurrentPage
		out.TotalPages = res.TotalPages
		out.Total = res.Total
		out.HitsPerPage = res.HitsPerPage
		out.Took = res.Took
		for _, hit := range res.Hits {
			out.Hits = append(out.Hits, hitOutput{ObjectID: hit.ID, Fields: nestsearch.StripIndexPrefix(hit.Fields)})
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return errors.Wrap(err, "failed to serialize results")
	}
	return nil
}
