package ddb

import (
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
)

// Operation is the event name of a stream record.
type Operation string

const (
	OperationInsert Operation = "INSERT"
	OperationModify Operation = "MODIFY"
	OperationRemove Operation = "REMOVE"
)

// ErrSkip marks stream records that carry nothing to apply.
var ErrSkip = errors.New("stream record skipped")

// Change is what one stream record asks the index to do.
type Change struct {
	Operation Operation
	Record    Record
}

// ParseStreamRecord turns a stream record into a Change. Inserts and modifies
// are read from the new image, removals from the keys. Records that cannot be
// applied return an error wrapping ErrSkip.
func ParseStreamRecord(r events.DynamoDBEventRecord) (Change, error) {
	op := Operation(r.EventName)

	var image map[string]events.DynamoDBAttributeValue
	switch op {
	case OperationInsert, OperationModify:
		image = r.Change.NewImage
		if image == nil {
			return Change{}, errors.Wrapf(ErrSkip, "%s without a new image", op)
		}
	case OperationRemove:
		image = r.Change.Keys
	default:
		return Change{}, errors.Wrapf(ErrSkip, "unsupported event %q", r.EventName)
	}

	item, err := FromStreamImage(image)
	if err != nil {
		return Change{}, errors.WithSecondaryError(errors.Wrap(ErrSkip, "unreadable image"), err)
	}
	record, err := UnmarshalRecord(item)
	if err != nil {
		return Change{}, errors.WithSecondaryError(errors.Wrap(ErrSkip, "unreadable record"), err)
	}
	if err := record.Validate(); err != nil {
		return Change{}, errors.WithSecondaryError(errors.Wrap(ErrSkip, "invalid record"), err)
	}
	if op != OperationRemove && record.Object == nil {
		return Change{}, errors.Wrapf(ErrSkip, "record %s in %s has no object", record.ID, record.IndexName)
	}

	return Change{Operation: op, Record: record}, nil
}

// FromStreamImage converts a stream image into SDK attribute values.
func FromStreamImage(image map[string]events.DynamoDBAttributeValue) (map[string]types.AttributeValue, error) {
	out := make(map[string]types.AttributeValue, len(image))
	for k, v := range image {
		av, err := fromStreamValue(v)
		if err != nil {
			return nil, errors.Wrapf(err, "attribute %s", k)
		}
		out[k] = av
	}
	return out, nil
}

func fromStreamValue(v events.DynamoDBAttributeValue) (types.AttributeValue, error) {
	switch v.DataType() {
	case events.DataTypeString:
		return &types.AttributeValueMemberS{Value: v.String()}, nil
	case events.DataTypeNumber:
		return &types.AttributeValueMemberN{Value: v.Number()}, nil
	case events.DataTypeBoolean:
		return &types.AttributeValueMemberBOOL{Value: v.Boolean()}, nil
	case events.DataTypeBinary:
		return &types.AttributeValueMemberB{Value: v.Binary()}, nil
	case events.DataTypeNull:
		return &types.AttributeValueMemberNULL{Value: true}, nil
	case events.DataTypeStringSet:
		return &types.AttributeValueMemberSS{Value: v.StringSet()}, nil
	case events.DataTypeNumberSet:
		return &types.AttributeValueMemberNS{Value: v.NumberSet()}, nil
	case events.DataTypeBinarySet:
		return &types.AttributeValueMemberBS{Value: v.BinarySet()}, nil
	case events.DataTypeList:
		list := v.List()
		out := make([]types.AttributeValue, 0, len(list))
		for i, item := range list {
			av, err := fromStreamValue(item)
			if err != nil {
				return nil, errors.Wrapf(err, "index %d", i)
			}
			out = append(out, av)
		}
		return &types.AttributeValueMemberL{Value: out}, nil
	case events.DataTypeMap:
		m, err := FromStreamImage(v.Map())
		if err != nil {
			return nil, err
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	default:
		return nil, errors.Newf("unsupported attribute type %d", v.DataType())
	}
}
