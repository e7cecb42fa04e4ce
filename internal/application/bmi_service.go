package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bmi-service/internal/domain/entity"
	repo "github.com/oksasatya/bmi-service/internal/domain/repository"
)

type BMIService struct {
	Repo   repo.BMIRepository
	Events EventPublisher
	Logger *logrus.Logger
}

func NewBMIService(repo repo.BMIRepository, events EventPublisher, logger *logrus.Logger) *BMIService {
	return &BMIService{Repo: repo, Events: events, Logger: logger}
}

// CreateBMIInput carries either Name (public) or UserID (authenticated),
// matching the repository's ownership.
type CreateBMIInput struct {
	Weight int
	Height int
	BMI    float64
	Status string
	Name   string
	UserID int64
}

// validate treats zero as missing; negatives are rejected too.
func (s *BMIService) validate(in CreateBMIInput) error {
	switch {
	case in.Weight <= 0:
		return invalid("weight")
	case in.Height <= 0:
		return invalid("height")
	case strings.TrimSpace(in.Status) == "":
		return invalid("status")
	case in.BMI <= 0:
		return invalid("bmi")
	}
	if s.Repo.Ownership() == entity.OwnedByUser {
		if in.UserID <= 0 {
			return ErrUnauthorized
		}
	} else if strings.TrimSpace(in.Name) == "" {
		return invalid("name")
	}
	return nil
}

func (s *BMIService) Create(ctx context.Context, in CreateBMIInput) (*entity.BMI, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	b := &entity.BMI{
		Weight: in.Weight,
		Height: in.Height,
		Value:  in.BMI,
		Status: in.Status,
	}
	if s.Repo.Ownership() == entity.OwnedByUser {
		b.UserID = in.UserID
	} else {
		b.Name = in.Name
	}
	if err := s.Repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create bmi: %w", err)
	}

	metricBMICreated.Add(1)
	publish(ctx, s.Events, s.Logger, Event{Type: EventBMIRecorded, BMI: &BMIEvent{BMIView: b.View(), UserID: b.UserID}})
	return b, nil
}

func (s *BMIService) ListAll(ctx context.Context) ([]entity.BMI, error) {
	list, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bmi: %w", err)
	}
	return list, nil
}

func (s *BMIService) GetByID(ctx context.Context, id int64) (*entity.BMI, error) {
	b, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrBMINotFound
		}
		return nil, fmt.Errorf("get bmi: %w", err)
	}
	return b, nil
}

func (s *BMIService) ListForOwner(ctx context.Context, userID int64) ([]entity.BMI, error) {
	list, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bmi for user: %w", err)
	}
	return list, nil
}
