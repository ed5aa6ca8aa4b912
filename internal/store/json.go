package store

import (
	"encoding/json"

	"github.com/mesh-intelligence/cadence/pkg/types"
)

// Nested lists and objects (deliverables, blockers, team, metadata) are
// typed in memory and serialized to JSON text only at the store
// boundary.

func marshalList(v []string) string {
	if v == nil {
		v = []string{}
	}
	data, _ := json.Marshal(v)
	return string(data)
}

func unmarshalList(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var v []string
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, types.Storagef("decode list column: %v", err)
	}
	if v == nil {
		v = []string{}
	}
	return v, nil
}

func marshalObject(v map[string]any) string {
	if v == nil {
		v = map[string]any{}
	}
	data, _ := json.Marshal(v)
	return string(data)
}

func unmarshalObject(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}
	var v map[string]any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, types.Storagef("decode object column: %v", err)
	}
	if v == nil {
		v = map[string]any{}
	}
	return v, nil
}
