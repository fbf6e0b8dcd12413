package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bizcore/internal/apperr"
	"bizcore/internal/models"
	"bizcore/internal/repository"
)

type ProjectService struct {
	crud      Crud[models.Project]
	customers *repository.Repository[models.Customer]
}

func NewProjectService(db *gorm.DB, activity *ActivityLogger, lg *zap.SugaredLogger) *ProjectService {
	return &ProjectService{
		crud: Crud[models.Project]{
			Repo:     repository.New[models.Project](db, lg, "project"),
			Lg:       lg,
			Activity: activity,
			Entity:   "project",
			IDOf:     func(p *models.Project) string { return strconv.FormatUint(uint64(p.ID), 10) },
		},
		customers: repository.New[models.Customer](db, lg, "customer"),
	}
}

type CreateProjectInput struct {
	Name        string     `json:"name" validate:"required,min=2,max=160"`
	Description string     `json:"description" validate:"max=4000"`
	CustomerID  uint       `json:"customer_id" validate:"required"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Budget      float64    `json:"budget" validate:"gte=0"`
}

type UpdateProjectInput struct {
	Name        *string    `json:"name" validate:"omitempty,min=2,max=160"`
	Description *string    `json:"description" validate:"omitempty,max=4000"`
	Status      *string    `json:"status" validate:"omitempty,oneof=planned active on_hold completed cancelled"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Budget      *float64   `json:"budget" validate:"omitempty,gte=0"`
}

func (s *ProjectService) Create(ctx context.Context, in CreateProjectInput) (*models.Project, error) {
	cust, err := s.customers.FindByID(ctx, in.CustomerID, nil)
	if err != nil {
		return nil, err
	}
	if cust == nil {
		return nil, apperr.BadRequest("project references a missing customer")
	}
	p := models.Project{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		CustomerID:  in.CustomerID,
		Status:      "planned",
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Budget:      in.Budget,
	}
	return s.crud.Create(ctx, in, &p)
}

func (s *ProjectService) Update(ctx context.Context, id uint, in UpdateProjectInput) (*models.Project, error) {
	changes := map[string]any{}
	if in.Name != nil {
		changes["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		changes["description"] = *in.Description
	}
	if in.Status != nil {
		changes["status"] = *in.Status
	}
	if in.StartDate != nil {
		changes["start_date"] = *in.StartDate
	}
	if in.EndDate != nil {
		changes["end_date"] = *in.EndDate
	}
	if in.Budget != nil {
		changes["budget"] = *in.Budget
	}
	return s.crud.Update(ctx, id, in, changes)
}

func (s *ProjectService) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	return s.crud.GetByID(ctx, id, &repository.QueryOptions{Preload: []string{"Customer"}})
}

func (s *ProjectService) Delete(ctx context.Context, id uint) error {
	return s.crud.Delete(ctx, id)
}

func (s *ProjectService) List(ctx context.Context, customerID uint, status string, page, limit int) (*repository.PageResult[models.Project], error) {
	criteria := repository.Criteria{}
	if customerID != 0 {
		criteria["customer_id"] = customerID
	}
	if status != "" {
		criteria["status"] = status
	}
	return s.crud.Paginate(ctx, criteria, &repository.QueryOptions{Page: page, Limit: limit})
}
