package ddb

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
)

const streamEvent = `{
	"Records": [
		{
			"eventID": "1",
			"eventName": "INSERT",
			"eventSource": "aws:dynamodb",
			"awsRegion": "us-east-1",
			"dynamodb": {
				"Keys": {"pk": {"S": "ch-1"}, "sk": {"S": "chapters"}},
				"NewImage": {
					"pk": {"S": "ch-1"},
					"sk": {"S": "chapters"},
					"object": {
						"M": {
							"idx_name": {"S": "Chapter 1"},
							"idx_leaders": {"L": [{"S": "Isanori Sakanashi"}, {"S": "Takeshi Murai"}]},
							"idx_updated_at": {"N": "1727740800"},
							"idx_active": {"BOOL": true},
							"idx_geo": {"M": {"lat": {"N": "35.6"}, "lng": {"N": "139.7"}}},
							"idx_tags": {"SS": ["asia", "japan"]},
							"idx_note": {"NULL": true}
						}
					}
				},
				"SequenceNumber": "111",
				"SizeBytes": 256,
				"StreamViewType": "NEW_AND_OLD_IMAGES"
			}
		},
		{
			"eventID": "2",
			"eventName": "REMOVE",
			"dynamodb": {
				"Keys": {"pk": {"S": "p-old"}, "sk": {"S": "projects"}},
				"OldImage": {"pk": {"S": "p-old"}, "sk": {"S": "projects"}, "object": {"M": {}}}
			}
		}
	]
}`

func TestParseStreamRecord(t *testing.T) {
	var event events.DynamoDBEvent
	if err := json.Unmarshal([]byte(streamEvent), &event); err != nil {
		t.Fatalf("Failed to unmarshal event: %v", err)
	}
	if len(event.Records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(event.Records))
	}

	insert, err := ParseStreamRecord(event.Records[0])
	if err != nil {
		t.Fatalf("ParseStreamRecord failed: %v", err)
	}
	if insert.Operation != OperationInsert {
		t.Errorf("Expected INSERT, got %s", insert.Operation)
	}
	if insert.Record.ID != "ch-1" || insert.Record.IndexName != "chapters" {
		t.Errorf("Unexpected keys: %+v", insert.Record)
	}

	obj := insert.Record.Object
	if obj["idx_name"] != "Chapter 1" {
		t.Errorf("idx_name mismatch: %v", obj["idx_name"])
	}
	if obj["idx_updated_at"] != float64(1727740800) {
		t.Errorf("idx_updated_at mismatch: %v (%T)", obj["idx_updated_at"], obj["idx_updated_at"])
	}
	if obj["idx_active"] != true {
		t.Errorf("idx_active mismatch: %v", obj["idx_active"])
	}
	leaders, ok := obj["idx_leaders"].([]any)
	if !ok || len(leaders) != 2 || leaders[1] != "Takeshi Murai" {
		t.Errorf("idx_leaders mismatch: %v", obj["idx_leaders"])
	}
	geo, ok := obj["idx_geo"].(map[string]any)
	if !ok || geo["lat"] != 35.6 {
		t.Errorf("idx_geo mismatch: %v", obj["idx_geo"])
	}

	remove, err := ParseStreamRecord(event.Records[1])
	if err != nil {
		t.Fatalf("ParseStreamRecord failed: %v", err)
	}
	if remove.Operation != OperationRemove || remove.Record.ID != "p-old" || remove.Record.IndexName != "projects" {
		t.Errorf("Unexpected remove change: %+v", remove)
	}
}

func TestParseStreamRecordSkips(t *testing.T) {
	keys := map[string]events.DynamoDBAttributeValue{
		"pk": events.NewStringAttribute("p-1"),
		"sk": events.NewStringAttribute("projects"),
	}

	tests := []struct {
		name   string
		record events.DynamoDBEventRecord
	}{
		{
			name:   "unsupported event",
			record: events.DynamoDBEventRecord{EventName: "TRUNCATE"},
		},
		{
			name:   "insert without new image",
			record: events.DynamoDBEventRecord{EventName: "INSERT", Change: events.DynamoDBStreamRecord{Keys: keys}},
		},
		{
			name: "modify without object",
			record: events.DynamoDBEventRecord{EventName: "MODIFY", Change: events.DynamoDBStreamRecord{
				NewImage: keys,
			}},
		},
		{
			name: "missing index name",
			record: events.DynamoDBEventRecord{EventName: "REMOVE", Change: events.DynamoDBStreamRecord{
				Keys: map[string]events.DynamoDBAttributeValue{"pk": events.NewStringAttribute("p-1")},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStreamRecord(tt.record)
			if !errors.Is(err, ErrSkip) {
				t.Errorf("Expected ErrSkip, got %v", err)
			}
		})
	}
}

type fakePutItem struct {
	input *dynamodb.PutItemInput
	err   error
}

func (f *fakePutItem) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.input = params
	return &dynamodb.PutItemOutput{}, f.err
}

func TestPutRecord(t *testing.T) {
	api := &fakePutItem{}
	record := Record{
		ID:        "2abc",
		IndexName: "projects",
		Object:    map[string]any{"idx_name": "OWASP ZAP", "idx_stars_count": 12800},
	}

	if err := PutRecord(context.Background(), api, "nest-index-source", record); err != nil {
		t.Fatalf("PutRecord failed: %v", err)
	}
	if api.input == nil || *api.input.TableName != "nest-index-source" {
		t.Fatalf("Unexpected input: %+v", api.input)
	}

	pk, ok := api.input.Item["pk"].(*types.AttributeValueMemberS)
	if !ok || pk.Value != "2abc" {
		t.Errorf("pk mismatch: %#v", api.input.Item["pk"])
	}

	back, err := UnmarshalRecord(api.input.Item)
	if err != nil {
		t.Fatalf("UnmarshalRecord failed: %v", err)
	}
	if back.Object["idx_name"] != "OWASP ZAP" || back.Object["idx_stars_count"] != float64(12800) {
		t.Errorf("Object mismatch: %v", back.Object)
	}
}

func TestPutRecordErrors(t *testing.T) {
	if err := PutRecord(context.Background(), &fakePutItem{}, "t", Record{IndexName: "projects"}); err == nil {
		t.Error("Expected validation error for missing ID")
	}

	api := &fakePutItem{err: errors.New("throttled")}
	err := PutRecord(context.Background(), api, "t", Record{ID: "1", IndexName: "projects", Object: map[string]any{}})
	if err == nil {
		t.Error("Expected the API error to be returned")
	}
}

func TestSearchObject(t *testing.T) {
	record := Record{ID: "p-1", IndexName: "projects", Object: map[string]any{"idx_name": "Nest"}}
	obj := record.SearchObject()
	if obj["objectID"] != "p-1" || obj["idx_name"] != "Nest" {
		t.Errorf("Unexpected object: %v", obj)
	}
	if _, ok := record.Object["objectID"]; ok {
		t.Error("SearchObject must not mutate the record")
	}
}
