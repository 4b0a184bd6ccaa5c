package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dreamtrack/dreamtrack/internal/model"
)

type ArchiveRepository interface {
	// Create is write-once: a duplicate attempt for an already-archived
	// week is a no-op and reports created=false, not an error, so
	// interrupted rollovers can retry safely.
	Create(ctx context.Context, archive *model.PastWeekArchive) (created bool, err error)
	Archives(ctx context.Context, userID string) ([]*model.PastWeekArchive, error)
	Exists(ctx context.Context, userID, weekID string) (bool, error)
}

type archiveRepository struct {
	store DocumentStore
}

func NewArchiveRepository(store DocumentStore) ArchiveRepository {
	return &archiveRepository{store: store}
}

func (r *archiveRepository) Create(ctx context.Context, archive *model.PastWeekArchive) (bool, error) {
	doc, err := ArchiveDoc(archive)
	if err != nil {
		return false, err
	}
	return r.store.InsertIfAbsent(ctx, archive.UserID, doc)
}

func (r *archiveRepository) Archives(ctx context.Context, userID string) ([]*model.PastWeekArchive, error) {
	docs, err := r.store.Query(ctx, userID, DocTypeArchive)
	if err != nil {
		return nil, err
	}

	archives := make([]*model.PastWeekArchive, 0, len(docs))
	for _, doc := range docs {
		archive := &model.PastWeekArchive{}
		err = json.Unmarshal(doc.Data, archive)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", doc.Key, err)
		}
		archives = append(archives, archive)
	}

	sort.Slice(archives, func(i, j int) bool {
		return archives[i].WeekStart.Before(archives[j].WeekStart)
	})

	return archives, nil
}

func (r *archiveRepository) Exists(ctx context.Context, userID, weekID string) (bool, error) {
	_, err := r.store.Get(ctx, userID, ArchiveKey(weekID))
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
