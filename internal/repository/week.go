package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dreamtrack/dreamtrack/internal/model"
)

var (
	ErrWeekNotFound = errors.New("week document not found")
)

type WeekRepository interface {
	// Current returns the single non-archived week document for the user,
	// regardless of which week it belongs to. ErrWeekNotFound on first
	// login is expected and handled by materializing a fresh document.
	Current(ctx context.Context, userID string) (*model.WeekDocument, error)
	ByWeek(ctx context.Context, userID, weekID string) (*model.WeekDocument, error)
	Upsert(ctx context.Context, doc *model.WeekDocument) error
}

type weekRepository struct {
	store DocumentStore
}

func NewWeekRepository(store DocumentStore) WeekRepository {
	return &weekRepository{store: store}
}

func (r *weekRepository) Current(ctx context.Context, userID string) (*model.WeekDocument, error) {
	docs, err := r.store.Query(ctx, userID, DocTypeWeek)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrWeekNotFound
	}

	// At most one non-archived week document exists per user; if an
	// interrupted rollover ever left two, the newest key wins.
	doc := docs[len(docs)-1]
	weekDoc := &model.WeekDocument{}
	err = json.Unmarshal(doc.Data, weekDoc)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", doc.Key, err)
	}

	return weekDoc, nil
}

func (r *weekRepository) ByWeek(ctx context.Context, userID, weekID string) (*model.WeekDocument, error) {
	doc, err := r.store.Get(ctx, userID, WeekKey(weekID))
	if err == ErrNotFound {
		return nil, ErrWeekNotFound
	}
	if err != nil {
		return nil, err
	}

	weekDoc := &model.WeekDocument{}
	err = json.Unmarshal(doc.Data, weekDoc)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal week %s: %w", weekID, err)
	}

	return weekDoc, nil
}

func (r *weekRepository) Upsert(ctx context.Context, doc *model.WeekDocument) error {
	d, err := WeekDoc(doc)
	if err != nil {
		return err
	}
	return r.store.Upsert(ctx, doc.UserID, d)
}
