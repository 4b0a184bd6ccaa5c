package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dreamtrack/dreamtrack/internal/model"
	"github.com/dreamtrack/dreamtrack/internal/repository"
	"github.com/dreamtrack/dreamtrack/internal/validation"
)

// ConnectService records connect events; each one feeds the score ledger.
type ConnectService struct {
	connects repository.ConnectRepository

	now func() time.Time
}

func NewConnectService(connects repository.ConnectRepository) *ConnectService {
	return &ConnectService{
		connects: connects,
		now:      time.Now,
	}
}

func (s *ConnectService) Record(ctx context.Context, userID, name string) (*model.Connect, error) {
	err := validation.ValidateConnectName(name)
	if err != nil {
		return nil, err
	}

	connect := &model.Connect{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		CreatedAt: s.now(),
	}

	err = s.connects.Create(ctx, connect)
	if err != nil {
		return nil, err
	}

	return connect, nil
}

func (s *ConnectService) Connects(ctx context.Context, userID string) ([]*model.Connect, error) {
	return s.connects.Connects(ctx, userID)
}
