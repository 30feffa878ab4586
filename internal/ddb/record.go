// Package ddb maps rows of the index source table to and from DynamoDB.
//
// Each row holds one index record: pk is the record's objectID, sk the name of
// the index it belongs to and object the record itself, with its idx_ fields.
package ddb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
)

// Record is one row of the source table.
type Record struct {
	ID        string         `dynamodbav:"pk"`
	IndexName string         `dynamodbav:"sk"`
	Object    map[string]any `dynamodbav:"object"`
}

// Validate reports the first missing key field.
func (r Record) Validate() error {
	switch {
	case r.ID == "":
		return errors.New("missing ID (pk)")
	case r.IndexName == "":
		return errors.New("missing index name (sk)")
	default:
		return nil
	}
}

// SearchObject returns the record as an index object with its objectID set.
func (r Record) SearchObject() map[string]any {
	object := make(map[string]any, len(r.Object)+1)
	for k, v := range r.Object {
		object[k] = v
	}
	object["objectID"] = r.ID
	return object
}

// UnmarshalRecord converts an item image into a Record.
func UnmarshalRecord(item map[string]types.AttributeValue) (Record, error) {
	var record Record
	if err := attributevalue.UnmarshalMap(item, &record); err != nil {
		return Record{}, errors.Wrap(err, "failed to unmarshal record")
	}
	return record, nil
}

// MarshalRecord converts a Record into an item.
func MarshalRecord(record Record) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal record")
	}
	return item, nil
}

// PutItemAPI is the part of *dynamodb.Client the writer needs.
type PutItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// PutRecord writes record to tableName.
func PutRecord(ctx context.Context, api PutItemAPI, tableName string, record Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	item, err := MarshalRecord(record)
	if err != nil {
		return err
	}

	_, err = api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      item,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to put record %s into %s", record.ID, tableName)
	}
	return nil
}
