package idcache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"plexmeta/internal/ids"
)

// encodeID stores scalars as bare JSON values and lists as JSON arrays so the
// scalar/list distinction survives a round trip.
func encodeID[T comparable](id ids.ID[T]) (any, error) {
	if id.Empty() {
		return nil, nil
	}
	var (
		data []byte
		err  error
	)
	if id.IsList() {
		data, err = json.Marshal(id.Values())
	} else {
		data, err = json.Marshal(id.First())
	}
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func decodeID[T comparable](raw sql.NullString) (ids.ID[T], error) {
	if !raw.Valid || strings.TrimSpace(raw.String) == "" {
		return ids.ID[T]{}, nil
	}
	value := strings.TrimSpace(raw.String)
	if strings.HasPrefix(value, "[") {
		var values []T
		if err := json.Unmarshal([]byte(value), &values); err != nil {
			return ids.ID[T]{}, fmt.Errorf("decode id list %q: %w", value, err)
		}
		return ids.List(values...), nil
	}
	var single T
	if err := json.Unmarshal([]byte(value), &single); err != nil {
		return ids.ID[T]{}, fmt.Errorf("decode id %q: %w", value, err)
	}
	return ids.Scalar(single), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}
