// Package algolia serves nestsearch queries from Algolia indexes and writes
// records into them for the seeder and the stream sync function.
package algolia

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	"github.com/cockroachdb/errors"
	"github.com/owasp/nestsearch"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Secrets holds the Algolia application credentials. Front ends only need a
// search-only key; the seeder and the sync function need a key with write ACLs.
type Secrets struct {
	AppID  string `json:"app_id"`
	APIKey string `json:"api_key"`
}

// FetchSecrets retrieves Algolia credentials. It is called once, on first use.
type FetchSecrets func() (Secrets, error)

// StaticSecrets returns a FetchSecrets function that provides static credentials.
func StaticSecrets(appID, apiKey string) FetchSecrets {
	return func() (Secrets, error) {
		return Secrets{AppID: appID, APIKey: apiKey}, nil
	}
}

// EnvSecrets reads ALGOLIA_APP_ID and ALGOLIA_API_KEY.
func EnvSecrets() FetchSecrets {
	return func() (Secrets, error) {
		appID := os.Getenv("ALGOLIA_APP_ID")
		if appID == "" {
			return Secrets{}, errors.New("ALGOLIA_APP_ID environment variable is not set")
		}

		apiKey := os.Getenv("ALGOLIA_API_KEY")
		if apiKey == "" {
			return Secrets{}, errors.New("ALGOLIA_API_KEY environment variable is not set")
		}

		return Secrets{AppID: appID, APIKey: apiKey}, nil
	}
}

// index is the part of *search.Index the searcher needs.
type index interface {
	Search(query string, opts ...interface{}) (search.QueryRes, error)
}

// Client lazily connects to Algolia. It is safe for concurrent use.
type Client struct {
	getClient func() (*search.Client, error)
	tracer    trace.Tracer
}

// NewClient returns a client that fetches credentials on first use.
func NewClient(fetchSecrets FetchSecrets) *Client {
	getClient := sync.OnceValues(func() (*search.Client, error) {
		secrets, err := fetchSecrets()
		if err != nil {
			return nil, errors.Wrap(err, "failed to fetch secrets")
		}

		if secrets.AppID == "" {
			return nil, errors.New("AppID is empty")
		}

		if secrets.APIKey == "" {
			return nil, errors.New("APIKey is empty")
		}

		return search.NewClient(secrets.AppID, secrets.APIKey), nil
	})

	return &Client{
		getClient: getClient,
		tracer:    otel.Tracer("nestsearch-algolia"),
	}
}

// Open returns a Searcher bound to indexName.
func (c *Client) Open(indexName string) nestsearch.Searcher {
	return NewSearcher(c, indexName)
}

func (c *Client) initIndex(indexName string) (*search.Index, error) {
	client, err := c.getClient()
	if err != nil {
		return nil, err
	}
	return client.InitIndex(indexName), nil
}

// write runs op against indexName inside a span named spanName.
func (c *Client) write(ctx context.Context, spanName, indexName string, attrs []attribute.KeyValue, op func(*search.Index) error) error {
	_, span := c.tracer.Start(ctx, spanName,
		trace.WithAttributes(append(attrs, attribute.String("algolia.index_name", indexName))...),
	)
	defer span.End()

	idx, err := c.initIndex(indexName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get Algolia client")
		return err
	}

	if err := op(idx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, fmt.Sprintf("%s failed on index %s", spanName, indexName))
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// SaveObject upserts one record. The record must carry an "objectID".
func (c *Client) SaveObject(ctx context.Context, indexName string, object map[string]any) error {
	var attrs []attribute.KeyValue
	if id, ok := object["objectID"].(string); ok {
		attrs = append(attrs, attribute.String("algolia.object_id", id))
	}

	return c.write(ctx, "algolia.save_object", indexName, attrs, func(idx *search.Index) error {
		if _, err := idx.SaveObject(object); err != nil {
			return errors.Wrapf(err, "failed to save object to Algolia index %s", indexName)
		}
		return nil
	})
}

// DeleteObject removes one record by objectID.
func (c *Client) DeleteObject(ctx context.Context, indexName string, objectID string) error {
	attrs := []attribute.KeyValue{attribute.String("algolia.object_id", objectID)}

	return c.write(ctx, "algolia.delete_object", indexName, attrs, func(idx *search.Index) error {
		if _, err := idx.DeleteObject(objectID); err != nil {
			return errors.Wrapf(err, "failed to delete object from Algolia index %s", indexName)
		}
		return nil
	})
}

// BatchSaveObjects upserts many records in one batch.
func (c *Client) BatchSaveObjects(ctx context.Context, indexName string, objects []map[string]any) error {
	if len(objects) == 0 {
		return nil
	}
	attrs := []attribute.KeyValue{attribute.Int("algolia.object_count", len(objects))}

	return c.write(ctx, "algolia.batch_save_objects", indexName, attrs, func(idx *search.Index) error {
		if _, err := idx.SaveObjects(objects); err != nil {
			return errors.Wrapf(err, "failed to batch save %d objects to Algolia index %s", len(objects), indexName)
		}
		return nil
	})
}

// BatchDeleteObjects removes many records in one batch.
func (c *Client) BatchDeleteObjects(ctx context.Context, indexName string, objectIDs []string) error {
	if len(objectIDs) == 0 {
		return nil
	}
	attrs := []attribute.KeyValue{attribute.Int("algolia.object_count", len(objectIDs))}

	return c.write(ctx, "algolia.batch_delete_objects", indexName, attrs, func(idx *search.Index) error {
		if _, err := idx.DeleteObjects(objectIDs); err != nil {
			return errors.Wrapf(err, "failed to batch delete objects from Algolia index %s", indexName)
		}
		return nil
	})
}
