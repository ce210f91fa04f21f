package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/Flappyflapflaps/solar-survey-sub000/internal/kvstore"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/models"
	"github.com/google/uuid"
)

// Templates stores form templates. Only the latest version of each
// template is kept.
type Templates struct {
	kv          kvstore.Store
	submissions *Submissions
	now         Clock
	mu          sync.Mutex
}

// NewTemplates returns template storage. Deleting a template also deletes
// its submissions from subs when subs is non-nil.
func NewTemplates(kv kvstore.Store, subs *Submissions) *Templates {
	return &Templates{kv: kv, submissions: subs, now: utcNow}
}

// WithClock replaces the timestamp source.
func (s *Templates) WithClock(c Clock) *Templates {
	s.now = c
	return s
}

// Save persists t, assigning an id when it has none and bumping its
// version. The stored copy is returned; t itself is not modified. When
// either write fails the previously stored state is left intact.
func (s *Templates) Save(ctx context.Context, t *models.FormTemplate) (*models.FormTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := t.Clone()
	now := s.now()
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	key := templateKeyPrefix + rec.ID

	prevRaw, existed, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if existed {
		var prev models.FormTemplate
		if err := decode(key, prevRaw, &prev); err != nil {
			return nil, err
		}
		rec.CreatedAt = prev.CreatedAt
		rec.Version = prev.Version
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.Version++
	rec.UpdatedAt = now

	index, err := s.index(ctx)
	if err != nil {
		return nil, err
	}

	if err := writeJSON(ctx, s.kv, key, rec); err != nil {
		return nil, err
	}

	index = upsertTemplateSummary(index, rec.Summary())
	if err := writeJSON(ctx, s.kv, templateIndexKey, index); err != nil {
		if rerr := restore(ctx, s.kv, key, prevRaw, existed); rerr != nil {
			return nil, fmt.Errorf("%w (rollback failed: %v)", err, rerr)
		}
		return nil, err
	}
	return rec.Clone(), nil
}

func (s *Templates) Load(ctx context.Context, id string) (*models.FormTemplate, error) {
	var t models.FormTemplate
	ok, err := readJSON(ctx, s.kv, templateKeyPrefix+id, &t)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	return &t, nil
}

// List returns the index in save order.
func (s *Templates) List(ctx context.Context) ([]models.TemplateSummary, error) {
	return s.index(ctx)
}

// Delete removes the template and every submission that references it.
func (s *Templates) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := templateKeyPrefix + id
	_, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return fmt.Errorf("template %s: %w", id, ErrNotFound)
	}

	if s.submissions != nil {
		if err := s.submissions.DeleteByTemplate(ctx, id); err != nil {
			return err
		}
	}

	index, err := s.index(ctx)
	if err != nil {
		return err
	}
	kept := index[:0]
	for _, sum := range index {
		if sum.ID != id {
			kept = append(kept, sum)
		}
	}
	if err := writeJSON(ctx, s.kv, templateIndexKey, kept); err != nil {
		return err
	}
	if err := s.kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *Templates) index(ctx context.Context) ([]models.TemplateSummary, error) {
	index := []models.TemplateSummary{}
	if _, err := readJSON(ctx, s.kv, templateIndexKey, &index); err != nil {
		return nil, err
	}
	return index, nil
}

func upsertTemplateSummary(index []models.TemplateSummary, sum models.TemplateSummary) []models.TemplateSummary {
	for i := range index {
		if index[i].ID == sum.ID {
			index[i] = sum
			return index
		}
	}
	return append(index, sum)
}
