package core

import (
	"context"
	"fmt"
	"strconv"
)

// Numeric helpers over the string-valued store. The store deliberately holds
// strings only; these helpers centralize the formatting so every writer uses
// the same full-precision representation.

// FormatFloat renders a coordinate or parameter without precision loss.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// GetFloat reads a float-valued key. The second return is false when the key
// is unset.
func GetFloat(ctx context.Context, s KnowledgeStore, key string) (float64, bool, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return 0, false, err
	}
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parsing float key %s: %w", key, err)
	}
	return v, true, nil
}

// SetFloat writes a float-valued key.
func SetFloat(ctx context.Context, s KnowledgeStore, key string, v float64, opts ...SetOption) error {
	return s.Set(ctx, key, FormatFloat(v), opts...)
}

// GetInt reads an integer-valued key. The second return is false when the
// key is unset.
func GetInt(ctx context.Context, s KnowledgeStore, key string) (int, bool, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return 0, false, err
	}
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("parsing int key %s: %w", key, err)
	}
	return v, true, nil
}

// SetInt writes an integer-valued key.
func SetInt(ctx context.Context, s KnowledgeStore, key string, v int, opts ...SetOption) error {
	return s.Set(ctx, key, strconv.Itoa(v), opts...)
}

// GetBool reads a flag key. Unset keys read as false.
func GetBool(ctx context.Context, s KnowledgeStore, key string) (bool, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return raw == "1", nil
}

// SetBool writes a flag key as "1"/"0".
func SetBool(ctx context.Context, s KnowledgeStore, key string, v bool, opts ...SetOption) error {
	val := "0"
	if v {
		val = "1"
	}
	return s.Set(ctx, key, val, opts...)
}
