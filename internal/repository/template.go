package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dreamtrack/dreamtrack/internal/model"
)

var (
	ErrTemplateNotFound = errors.New("week template not found")
)

type TemplateRepository interface {
	ByID(ctx context.Context, userID, goalID string) (*model.WeekTemplate, error)
	Templates(ctx context.Context, userID string) ([]*model.WeekTemplate, error)
	Upsert(ctx context.Context, tmpl *model.WeekTemplate) error
	Delete(ctx context.Context, userID, goalID string) error
}

type templateRepository struct {
	store DocumentStore
}

func NewTemplateRepository(store DocumentStore) TemplateRepository {
	return &templateRepository{store: store}
}

func (r *templateRepository) ByID(ctx context.Context, userID, goalID string) (*model.WeekTemplate, error) {
	doc, err := r.store.Get(ctx, userID, TemplateKey(goalID))
	if err == ErrNotFound {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}

	tmpl := &model.WeekTemplate{}
	err = json.Unmarshal(doc.Data, tmpl)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal template %s: %w", goalID, err)
	}

	return tmpl, nil
}

func (r *templateRepository) Templates(ctx context.Context, userID string) ([]*model.WeekTemplate, error) {
	docs, err := r.store.Query(ctx, userID, DocTypeTemplate)
	if err != nil {
		return nil, err
	}

	templates := make([]*model.WeekTemplate, 0, len(docs))
	for _, doc := range docs {
		tmpl := &model.WeekTemplate{}
		err = json.Unmarshal(doc.Data, tmpl)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", doc.Key, err)
		}
		templates = append(templates, tmpl)
	}

	return templates, nil
}

func (r *templateRepository) Upsert(ctx context.Context, tmpl *model.WeekTemplate) error {
	doc, err := TemplateDoc(tmpl)
	if err != nil {
		return err
	}
	return r.store.Upsert(ctx, tmpl.UserID, doc)
}

func (r *templateRepository) Delete(ctx context.Context, userID, goalID string) error {
	err := r.store.Delete(ctx, userID, TemplateKey(goalID))
	if err == ErrNotFound {
		return ErrTemplateNotFound
	}
	return err
}
