// Package storage persists form templates and submissions into a kvstore,
// one key per record plus one index key per namespace.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Flappyflapflaps/solar-survey-sub000/internal/kvstore"
)

const (
	templateKeyPrefix   = "form_template_"
	templateIndexKey    = "form_templates_index"
	submissionKeyPrefix = "form_submission_"
	submissionIndexKey  = "form_submissions_index"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrQuotaExceeded = errors.New("storage is full")
)

// Clock stamps record timestamps.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

func readJSON(ctx context.Context, kv kvstore.Store, key string, out any) (bool, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	return true, decode(key, raw, out)
}

func decode(key, raw string, out any) error {
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func writeJSON(ctx context.Context, kv kvstore.Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, string(raw)); err != nil {
		if errors.Is(err, kvstore.ErrQuotaExceeded) {
			return fmt.Errorf("%w: %w", ErrQuotaExceeded, err)
		}
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// restore puts back a record's previous raw value, or removes the key when
// there was none.
func restore(ctx context.Context, kv kvstore.Store, key, prev string, existed bool) error {
	if existed {
		return kv.Set(ctx, key, prev)
	}
	return kv.Delete(ctx, key)
}
