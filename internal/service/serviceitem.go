package service

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bizcore/internal/models"
	"bizcore/internal/repository"
)

// ServiceCatalog manages the services the business offers.
type ServiceCatalog struct {
	crud Crud[models.ServiceItem]
}

func NewServiceCatalog(db *gorm.DB, activity *ActivityLogger, lg *zap.SugaredLogger) *ServiceCatalog {
	return &ServiceCatalog{
		crud: Crud[models.ServiceItem]{
			Repo:     repository.New[models.ServiceItem](db, lg, "service"),
			Lg:       lg,
			Activity: activity,
			Entity:   "service",
			IDOf:     func(s *models.ServiceItem) string { return strconv.FormatUint(uint64(s.ID), 10) },
		},
	}
}

type CreateServiceInput struct {
	Name            string  `json:"name" validate:"required,min=2,max=120"`
	Description     string  `json:"description" validate:"max=2000"`
	Price           float64 `json:"price" validate:"gte=0"`
	DurationMinutes int     `json:"duration_minutes" validate:"gte=0"`
}

type UpdateServiceInput struct {
	Name            *string  `json:"name" validate:"omitempty,min=2,max=120"`
	Description     *string  `json:"description" validate:"omitempty,max=2000"`
	Price           *float64 `json:"price" validate:"omitempty,gte=0"`
	DurationMinutes *int     `json:"duration_minutes" validate:"omitempty,gte=0"`
	Active          *bool    `json:"active"`
}

func (s *ServiceCatalog) Create(ctx context.Context, in CreateServiceInput) (*models.ServiceItem, error) {
	item := models.ServiceItem{
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		Price:           in.Price,
		DurationMinutes: in.DurationMinutes,
		Active:          true,
	}
	return s.crud.Create(ctx, in, &item)
}

func (s *ServiceCatalog) Update(ctx context.Context, id uint, in UpdateServiceInput) (*models.ServiceItem, error) {
	changes := map[string]any{}
	if in.Name != nil {
		changes["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		changes["description"] = *in.Description
	}
	if in.Price != nil {
		changes["price"] = *in.Price
	}
	if in.DurationMinutes != nil {
		changes["duration_minutes"] = *in.DurationMinutes
	}
	if in.Active != nil {
		changes["active"] = *in.Active
	}
	return s.crud.Update(ctx, id, in, changes)
}

func (s *ServiceCatalog) GetByID(ctx context.Context, id uint) (*models.ServiceItem, error) {
	return s.crud.GetByID(ctx, id, nil)
}

func (s *ServiceCatalog) Delete(ctx context.Context, id uint) error {
	return s.crud.Delete(ctx, id)
}

func (s *ServiceCatalog) List(ctx context.Context, activeOnly bool, page, limit int) (*repository.PageResult[models.ServiceItem], error) {
	criteria := repository.Criteria{}
	if activeOnly {
		criteria["active"] = true
	}
	return s.crud.Paginate(ctx, criteria, &repository.QueryOptions{Page: page, Limit: limit, SortBy: "name", SortDir: "asc"})
}
