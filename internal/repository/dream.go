package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dreamtrack/dreamtrack/internal/model"
)

var (
	ErrDreamNotFound = errors.New("dream not found")
)

type DreamRepository interface {
	ByID(ctx context.Context, userID, dreamID string) (*model.Dream, error)
	Dreams(ctx context.Context, userID string) ([]*model.Dream, error)
	Upsert(ctx context.Context, dream *model.Dream) error
	Delete(ctx context.Context, userID, dreamID string) error
}

type dreamRepository struct {
	store DocumentStore
}

func NewDreamRepository(store DocumentStore) DreamRepository {
	return &dreamRepository{store: store}
}

func (r *dreamRepository) ByID(ctx context.Context, userID, dreamID string) (*model.Dream, error) {
	doc, err := r.store.Get(ctx, userID, DreamKey(dreamID))
	if err == ErrNotFound {
		return nil, ErrDreamNotFound
	}
	if err != nil {
		return nil, err
	}

	dream := &model.Dream{}
	err = json.Unmarshal(doc.Data, dream)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal dream %s: %w", dreamID, err)
	}

	return dream, nil
}

func (r *dreamRepository) Dreams(ctx context.Context, userID string) ([]*model.Dream, error) {
	docs, err := r.store.Query(ctx, userID, DocTypeDream)
	if err != nil {
		return nil, err
	}

	dreams := make([]*model.Dream, 0, len(docs))
	for _, doc := range docs {
		dream := &model.Dream{}
		err = json.Unmarshal(doc.Data, dream)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", doc.Key, err)
		}
		dreams = append(dreams, dream)
	}

	return dreams, nil
}

func (r *dreamRepository) Upsert(ctx context.Context, dream *model.Dream) error {
	doc, err := DreamDoc(dream)
	if err != nil {
		return err
	}
	return r.store.Upsert(ctx, dream.UserID, doc)
}

func (r *dreamRepository) Delete(ctx context.Context, userID, dreamID string) error {
	err := r.store.Delete(ctx, userID, DreamKey(dreamID))
	if err == ErrNotFound {
		return ErrDreamNotFound
	}
	return err
}
