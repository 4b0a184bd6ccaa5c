package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dreamtrack/dreamtrack/internal/model"
)

type ConnectRepository interface {
	Create(ctx context.Context, connect *model.Connect) error
	Connects(ctx context.Context, userID string) ([]*model.Connect, error)
}

type connectRepository struct {
	store DocumentStore
}

func NewConnectRepository(store DocumentStore) ConnectRepository {
	return &connectRepository{store: store}
}

func (r *connectRepository) Create(ctx context.Context, connect *model.Connect) error {
	doc, err := ConnectDoc(connect)
	if err != nil {
		return err
	}
	return r.store.Upsert(ctx, connect.UserID, doc)
}

func (r *connectRepository) Connects(ctx context.Context, userID string) ([]*model.Connect, error) {
	docs, err := r.store.Query(ctx, userID, DocTypeConnect)
	if err != nil {
		return nil, err
	}

	connects := make([]*model.Connect, 0, len(docs))
	for _, doc := range docs {
		connect := &model.Connect{}
		err = json.Unmarshal(doc.Data, connect)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", doc.Key, err)
		}
		connects = append(connects, connect)
	}

	sort.Slice(connects, func(i, j int) bool {
		return connects[i].CreatedAt.Before(connects[j].CreatedAt)
	})

	return connects, nil
}
