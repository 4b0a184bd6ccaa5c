package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/dreamtrack/dreamtrack/internal/model"
	"github.com/dreamtrack/dreamtrack/internal/repository"
)

const (
	PointsDreamCreated = 10
	PointsConnect      = 2
)

// Score derives the point ledger from source documents. Deterministic and
// side-effect-free: the same inputs always yield the same result, which
// keeps the ledger auditable and recomputable after partial failures.
func Score(dreams []*model.Dream, connects []*model.Connect, archives []*model.PastWeekArchive) model.ScoreResult {
	entries := make([]model.ScoreEntry, 0, len(dreams)+len(connects)+len(archives))

	for _, d := range dreams {
		entries = append(entries, model.ScoreEntry{
			Date:     d.CreatedAt,
			Source:   model.ScoreSourceDream,
			Points:   PointsDreamCreated,
			Activity: fmt.Sprintf("Created dream %q", d.Title),
		})
	}

	for _, c := range connects {
		entries = append(entries, model.ScoreEntry{
			Date:     c.CreatedAt,
			Source:   model.ScoreSourceConnect,
			Points:   PointsConnect,
			Activity: fmt.Sprintf("Connected with %s", c.Name),
		})
	}

	for _, a := range archives {
		entries = append(entries, model.ScoreEntry{
			Date:     a.WeekEnd,
			Source:   model.ScoreSourceWeek,
			Points:   a.Score,
			Activity: fmt.Sprintf("Completed %d goals in %s", a.CompletedGoals, a.WeekID),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.Before(entries[j].Date)
		}
		if entries[i].Source != entries[j].Source {
			return entries[i].Source < entries[j].Source
		}
		return entries[i].Activity < entries[j].Activity
	})

	total := 0
	for _, e := range entries {
		total += e.Points
	}

	return model.ScoreResult{TotalScore: total, Entries: entries}
}

// ScoringService loads a user's source documents and recomputes the score.
type ScoringService struct {
	dreams   repository.DreamRepository
	connects repository.ConnectRepository
	archives repository.ArchiveRepository
}

func NewScoringService(
	dreams repository.DreamRepository,
	connects repository.ConnectRepository,
	archives repository.ArchiveRepository,
) *ScoringService {
	return &ScoringService{
		dreams:   dreams,
		connects: connects,
		archives: archives,
	}
}

func (s *ScoringService) ScoreForUser(ctx context.Context, userID string) (model.ScoreResult, error) {
	dreams, err := s.dreams.Dreams(ctx, userID)
	if err != nil {
		return model.ScoreResult{}, fmt.Errorf("failed to load dreams: %w", err)
	}
	connects, err := s.connects.Connects(ctx, userID)
	if err != nil {
		return model.ScoreResult{}, fmt.Errorf("failed to load connects: %w", err)
	}
	archives, err := s.archives.Archives(ctx, userID)
	if err != nil {
		return model.ScoreResult{}, fmt.Errorf("failed to load archives: %w", err)
	}

	return Score(dreams, connects, archives), nil
}
