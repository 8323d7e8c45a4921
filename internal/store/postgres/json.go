package postgres

import (
	"encoding/json"
	"fmt"
)

// jsonb marshals v for a JSONB column; nil maps are stored as {}.
func jsonb[M ~map[K]V, K comparable, V any](v M) (string, error) {
	if v == nil {
		return "{}", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode jsonb: %w", err)
	}
	return string(b), nil
}

func fromJSONB[M ~map[K]V, K comparable, V any](raw []byte, dst *M) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode jsonb: %w", err)
	}
	if len(*dst) == 0 {
		*dst = nil
	}
	return nil
}
