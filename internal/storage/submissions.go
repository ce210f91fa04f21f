package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/Flappyflapflaps/solar-survey-sub000/internal/kvstore"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Submissions stores filled-in data records.
type Submissions struct {
	kv  kvstore.Store
	now Clock
	mu  sync.Mutex
}

func NewSubmissions(kv kvstore.Store) *Submissions {
	return &Submissions{kv: kv, now: utcNow}
}

// WithClock replaces the timestamp source.
func (s *Submissions) WithClock(c Clock) *Submissions {
	s.now = c
	return s
}

// Save persists sub under its id, assigning one when empty.
func (s *Submissions) Save(ctx context.Context, sub *models.Submission) (*models.Submission, error) {
	if sub.TemplateID == "" {
		return nil, fmt.Errorf("submission has no template id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := *sub
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.Data = make(datatypes.JSONMap, len(sub.Data))
	for k, v := range sub.Data {
		rec.Data[k] = v
	}
	key := submissionKeyPrefix + rec.ID

	prevRaw, existed, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	now := s.now()
	if existed {
		var prev models.Submission
		if err := decode(key, prevRaw, &prev); err != nil {
			return nil, err
		}
		rec.CreatedAt = prev.CreatedAt
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	index, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	if err := writeJSON(ctx, s.kv, key, rec); err != nil {
		return nil, err
	}

	index = upsertSubmissionSummary(index, rec.Summary())
	if err := writeJSON(ctx, s.kv, submissionIndexKey, index); err != nil {
		if rerr := restore(ctx, s.kv, key, prevRaw, existed); rerr != nil {
			return nil, fmt.Errorf("%w (rollback failed: %v)", err, rerr)
		}
		return nil, err
	}
	return &rec, nil
}

func (s *Submissions) Load(ctx context.Context, id string) (*models.Submission, error) {
	var sub models.Submission
	ok, err := readJSON(ctx, s.kv, submissionKeyPrefix+id, &sub)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("submission %s: %w", id, ErrNotFound)
	}
	return &sub, nil
}

func (s *Submissions) List(ctx context.Context) ([]models.SubmissionSummary, error) {
	return s.index(ctx)
}

func (s *Submissions) ListByTemplate(ctx context.Context, templateID string) ([]models.SubmissionSummary, error) {
	index, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.SubmissionSummary{}
	for _, sum := range index {
		if sum.TemplateID == templateID {
			out = append(out, sum)
		}
	}
	return out, nil
}

func (s *Submissions) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := submissionKeyPrefix + id
	_, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return fmt.Errorf("submission %s: %w", id, ErrNotFound)
	}
	if err := s.remove(ctx, func(sum models.SubmissionSummary) bool { return sum.ID == id }); err != nil {
		return err
	}
	if err := s.kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// DeleteByTemplate removes every submission of templateID. Having none is
// not an error.
func (s *Submissions) DeleteByTemplate(ctx context.Context, templateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(ctx, func(sum models.SubmissionSummary) bool { return sum.TemplateID == templateID })
}

// remove drops matching entries from the index first so a failure part way
// through never leaves an index entry pointing at a deleted record.
func (s *Submissions) remove(ctx context.Context, match func(models.SubmissionSummary) bool) error {
	index, err := s.index(ctx)
	if err != nil {
		return err
	}
	var gone []string
	kept := []models.SubmissionSummary{}
	for _, sum := range index {
		if match(sum) {
			gone = append(gone, sum.ID)
			continue
		}
		kept = append(kept, sum)
	}
	if len(gone) > 0 {
		if err := writeJSON(ctx, s.kv, submissionIndexKey, kept); err != nil {
			return err
		}
	}
	for _, id := range gone {
		key := submissionKeyPrefix + id
		if err := s.kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	return nil
}

func (s *Submissions) index(ctx context.Context) ([]models.SubmissionSummary, error) {
	index := []models.SubmissionSummary{}
	if _, err := readJSON(ctx, s.kv, submissionIndexKey, &index); err != nil {
		return nil, err
	}
	return index, nil
}

func upsertSubmissionSummary(index []models.SubmissionSummary, sum models.SubmissionSummary) []models.SubmissionSummary {
	for i := range index {
		if index[i].ID == sum.ID {
			index[i] = sum
			return index
		}
	}
	return append(index, sum)
}
