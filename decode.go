package nestsearch

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
)

// IndexPrefix is the field-name prefix the indexer puts on every record field.
const IndexPrefix = "idx_"

// StripIndexPrefix returns a copy of fields with IndexPrefix removed from every
// top-level key. Keys without the prefix are copied unchanged; when both
// "idx_name" and "name" exist the prefixed value wins.
func StripIndexPrefix(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if !strings.HasPrefix(k, IndexPrefix) {
			if _, taken := out[k]; !taken {
				out[k] = v
			}
			continue
		}
		out[strings.TrimPrefix(k, IndexPrefix)] = v
	}
	return out
}

// DecodeFields converts one raw record into T through its JSON field tags.
func DecodeFields[T any](fields map[string]any) (T, error) {
	var item T
	raw, err := json.Marshal(fields)
	if err != nil {
		return item, errors.Wrap(err, "failed to marshal hit fields")
	}
	if err := json.Unmarshal(raw, &item); err != nil {
		return item, errors.Wrapf(err, "failed to decode hit into %T", item)
	}
	return item, nil
}

// Decode converts hits into typed items, preserving order. The hit ID is
// exposed to T under the "objectID" key when the record does not carry one.
func Decode[T any](hits []Hit) ([]T, error) {
	items := make([]T, 0, len(hits))
	for i, hit := range hits {
		fields := hit.Fields
		if _, ok := fields["objectID"]; !ok && hit.ID != "" {
			fields = make(map[string]any, len(hit.Fields)+1)
			for k, v := range hit.Fields {
				fields[k] = v
			}
			fields["objectID"] = hit.ID
		}
		item, err := DecodeFields[T](fields)
		if err != nil {
			return nil, errors.Wrapf(err, "hit %d (%s)", i, hit.ID)
		}
		items = append(items, item)
	}
	return items, nil
}
