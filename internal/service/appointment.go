package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bizcore/internal/apperr"
	"bizcore/internal/events"
	"bizcore/internal/models"
	"bizcore/internal/repository"
)

type AppointmentService struct {
	crud      Crud[models.Appointment]
	customers *repository.Repository[models.Customer]
	bus       *events.Bus
}

func NewAppointmentService(db *gorm.DB, bus *events.Bus, activity *ActivityLogger, lg *zap.SugaredLogger) *AppointmentService {
	s := &AppointmentService{
		crud: Crud[models.Appointment]{
			Repo:     repository.New[models.Appointment](db, lg, "appointment"),
			Lg:       lg,
			Activity: activity,
			Entity:   "appointment",
			IDOf:     func(a *models.Appointment) string { return strconv.FormatUint(uint64(a.ID), 10) },
		},
		customers: repository.New[models.Customer](db, lg, "customer"),
		bus:       bus,
	}
	return s
}

type CreateAppointmentInput struct {
	Title      string    `json:"title" validate:"required,min=2,max=160"`
	CustomerID uint      `json:"customer_id" validate:"required"`
	ProjectID  *uint     `json:"project_id"`
	StartsAt   time.Time `json:"starts_at" validate:"required"`
	EndsAt     time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
	Location   string    `json:"location" validate:"max=255"`
	Notes      string    `json:"notes" validate:"max=2000"`
}

type UpdateAppointmentInput struct {
	Title    *string    `json:"title" validate:"omitempty,min=2,max=160"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
	Location *string    `json:"location" validate:"omitempty,max=255"`
	Status   *string    `json:"status" validate:"omitempty,oneof=scheduled confirmed completed cancelled"`
	Notes    *string    `json:"notes" validate:"omitempty,max=2000"`
}

type AppointmentEventPayload struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	CustomerID uint      `json:"customer_id"`
	StartsAt   time.Time `json:"starts_at"`
}

func (s *AppointmentService) Create(ctx context.Context, in CreateAppointmentInput) (*models.Appointment, error) {
	cust, err := s.customers.FindByID(ctx, in.CustomerID, nil)
	if err != nil {
		return nil, err
	}
	if cust == nil {
		return nil, apperr.BadRequest("appointment references a missing customer")
	}
	a := models.Appointment{
		Title:      strings.TrimSpace(in.Title),
		CustomerID: in.CustomerID,
		ProjectID:  in.ProjectID,
		StartsAt:   in.StartsAt,
		EndsAt:     in.EndsAt,
		Location:   in.Location,
		Status:     "scheduled",
		Notes:      in.Notes,
	}
	out, err := s.crud.Create(ctx, in, &a)
	if err != nil {
		return nil, err
	}
	s.bus.Emit(ctx, events.AppointmentCreated, AppointmentEventPayload{
		ID: out.ID, Title: out.Title, CustomerID: out.CustomerID, StartsAt: out.StartsAt,
	})
	return out, nil
}

func (s *AppointmentService) Update(ctx context.Context, id uint, in UpdateAppointmentInput) (*models.Appointment, error) {
	existing, err := s.crud.GetByID(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	starts, ends := existing.StartsAt, existing.EndsAt
	if in.StartsAt != nil {
		starts = *in.StartsAt
	}
	if in.EndsAt != nil {
		ends = *in.EndsAt
	}
	if !ends.After(starts) {
		return nil, apperr.Validation("validation failed", "ends_at must be after starts_at")
	}
	changes := map[string]any{}
	if in.Title != nil {
		changes["title"] = strings.TrimSpace(*in.Title)
	}
	if in.StartsAt != nil {
		changes["starts_at"] = starts
	}
	if in.EndsAt != nil {
		changes["ends_at"] = ends
	}
	if in.Location != nil {
		changes["location"] = *in.Location
	}
	if in.Status != nil {
		changes["status"] = *in.Status
	}
	if in.Notes != nil {
		changes["notes"] = *in.Notes
	}
	out, err := s.crud.Update(ctx, id, in, changes)
	if err != nil {
		return nil, err
	}
	if in.Status != nil && *in.Status == "cancelled" && existing.Status != "cancelled" {
		s.bus.Emit(ctx, events.AppointmentCancelled, AppointmentEventPayload{
			ID: out.ID, Title: out.Title, CustomerID: out.CustomerID, StartsAt: out.StartsAt,
		})
	}
	return out, nil
}

func (s *AppointmentService) GetByID(ctx context.Context, id uint) (*models.Appointment, error) {
	return s.crud.GetByID(ctx, id, &repository.QueryOptions{Preload: []string{"Customer"}})
}

func (s *AppointmentService) Delete(ctx context.Context, id uint) error {
	return s.crud.Delete(ctx, id)
}

// List supports a time-window filter for "upcoming" style views.
func (s *AppointmentService) List(ctx context.Context, customerID uint, status string, from, to *time.Time, page, limit int) (*repository.PageResult[models.Appointment], error) {
	criteria := repository.Criteria{}
	if customerID != 0 {
		criteria["customer_id"] = customerID
	}
	if status != "" {
		criteria["status"] = status
	}
	window := repository.Op{}
	if from != nil {
		window.Gte = *from
	}
	if to != nil {
		window.Lte = *to
	}
	if from != nil || to != nil {
		criteria["starts_at"] = window
	}
	return s.crud.Paginate(ctx, criteria, &repository.QueryOptions{Page: page, Limit: limit, SortBy: "starts_at", SortDir: "asc"})
}
