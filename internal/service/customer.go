package service

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bizcore/internal/apperr"
	"bizcore/internal/events"
	"bizcore/internal/models"
	"bizcore/internal/repository"
)

type CustomerService struct {
	crud Crud[models.Customer]
	bus  *events.Bus
}

func NewCustomerService(db *gorm.DB, bus *events.Bus, activity *ActivityLogger, lg *zap.SugaredLogger) *CustomerService {
	return &CustomerService{
		crud: Crud[models.Customer]{
			Repo:     repository.New[models.Customer](db, lg, "customer"),
			Lg:       lg,
			Activity: activity,
			Entity:   "customer",
			IDOf:     func(c *models.Customer) string { return strconv.FormatUint(uint64(c.ID), 10) },
		},
		bus: bus,
	}
}

type CreateCustomerInput struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Company string `json:"company" validate:"max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"max=32"`
	Address string `json:"address" validate:"max=255"`
	Notes   string `json:"notes" validate:"max=2000"`
}

type UpdateCustomerInput struct {
	Name    *string `json:"name" validate:"omitempty,min=2,max=120"`
	Company *string `json:"company" validate:"omitempty,max=120"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone" validate:"omitempty,max=32"`
	Address *string `json:"address" validate:"omitempty,max=255"`
	Status  *string `json:"status" validate:"omitempty,oneof=active inactive archived"`
	Notes   *string `json:"notes" validate:"omitempty,max=2000"`
}

type CustomerListFilter struct {
	Status string
	Search string
	Page   int
	Limit  int
}

func (s *CustomerService) Create(ctx context.Context, in CreateCustomerInput) (*models.Customer, error) {
	c := models.Customer{
		Name:    strings.TrimSpace(in.Name),
		Company: strings.TrimSpace(in.Company),
		Email:   strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:   in.Phone,
		Address: in.Address,
		Status:  models.StatusActive,
		Notes:   in.Notes,
	}
	out, err := s.crud.Create(ctx, in, &c)
	if err != nil {
		return nil, err
	}
	s.bus.Emit(ctx, events.CustomerCreated, CustomerEventPayload{ID: out.ID, Name: out.Name, Email: out.Email})
	return out, nil
}

func (s *CustomerService) Update(ctx context.Context, id uint, in UpdateCustomerInput) (*models.Customer, error) {
	changes := map[string]any{}
	if in.Name != nil {
		changes["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Company != nil {
		changes["company"] = strings.TrimSpace(*in.Company)
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		// Uniqueness excluding self; the DB constraint backs this up, the
		// pre-check turns the common case into a clean Conflict.
		other, err := s.crud.Repo.FindOneByCriteria(ctx, repository.Criteria{"email": email}, nil)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, apperr.Conflict("customer already exists")
		}
		changes["email"] = email
	}
	if in.Phone != nil {
		changes["phone"] = *in.Phone
	}
	if in.Address != nil {
		changes["address"] = *in.Address
	}
	if in.Status != nil {
		changes["status"] = *in.Status
	}
	if in.Notes != nil {
		changes["notes"] = *in.Notes
	}
	return s.crud.Update(ctx, id, in, changes)
}

func (s *CustomerService) GetByID(ctx context.Context, id uint) (*models.Customer, error) {
	return s.crud.GetByID(ctx, id, nil)
}

// Delete is the hard delete; a customer referenced by projects or
// appointments surfaces as Conflict.
func (s *CustomerService) Delete(ctx context.Context, id uint) error {
	return s.crud.Delete(ctx, id)
}

func (s *CustomerService) List(ctx context.Context, f CustomerListFilter) (*repository.PageResult[models.Customer], error) {
	criteria := repository.Criteria{}
	if f.Status != "" {
		criteria["status"] = f.Status
	}
	if f.Search != "" {
		criteria["name"] = repository.Op{Contains: f.Search}
	}
	return s.crud.Paginate(ctx, criteria, &repository.QueryOptions{Page: f.Page, Limit: f.Limit})
}

type CustomerEventPayload struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
