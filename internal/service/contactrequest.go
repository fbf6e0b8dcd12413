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

type ContactRequestService struct {
	crud         Crud[models.ContactRequest]
	users        *repository.UserRepository
	appointments *AppointmentService
	bus          *events.Bus
}

func NewContactRequestService(db *gorm.DB, users *repository.UserRepository, appointments *AppointmentService, bus *events.Bus, activity *ActivityLogger, lg *zap.SugaredLogger) *ContactRequestService {
	return &ContactRequestService{
		crud: Crud[models.ContactRequest]{
			Repo:     repository.New[models.ContactRequest](db, lg, "contact request"),
			Lg:       lg,
			Activity: activity,
			Entity:   "contact_request",
			IDOf:     func(r *models.ContactRequest) string { return strconv.FormatUint(uint64(r.ID), 10) },
		},
		users:        users,
		appointments: appointments,
		bus:          bus,
	}
}

type CreateContactRequestInput struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"max=32"`
	Subject string `json:"subject" validate:"required,min=2,max=200"`
	Message string `json:"message" validate:"max=4000"`
}

type UpdateContactRequestInput struct {
	Status     *string `json:"status" validate:"omitempty,oneof=new in_progress resolved closed"`
	AssignedTo *uint   `json:"assigned_to"`
}

type ContactRequestEventPayload struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Subject    string `json:"subject"`
	AssignedTo *uint  `json:"assigned_to,omitempty"`
}

// Create is the public intake path (no authentication), so it emits the
// domain event that fans out staff notifications.
func (s *ContactRequestService) Create(ctx context.Context, in CreateContactRequestInput) (*models.ContactRequest, error) {
	r := models.ContactRequest{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:   in.Phone,
		Subject: strings.TrimSpace(in.Subject),
		Message: in.Message,
		Status:  "new",
	}
	out, err := s.crud.Create(ctx, in, &r)
	if err != nil {
		return nil, err
	}
	s.bus.Emit(ctx, events.ContactRequestCreated, ContactRequestEventPayload{
		ID: out.ID, Name: out.Name, Email: out.Email, Subject: out.Subject,
	})
	return out, nil
}

func (s *ContactRequestService) Update(ctx context.Context, id uint, in UpdateContactRequestInput) (*models.ContactRequest, error) {
	changes := map[string]any{}
	if in.Status != nil {
		changes["status"] = *in.Status
	}
	if in.AssignedTo != nil {
		assignee, err := s.users.FindByID(ctx, *in.AssignedTo, nil)
		if err != nil {
			return nil, err
		}
		if assignee == nil || assignee.Status != models.StatusActive {
			return nil, apperr.BadRequest("assignee is not an active user")
		}
		changes["assigned_to"] = *in.AssignedTo
	}
	out, err := s.crud.Update(ctx, id, in, changes)
	if err != nil {
		return nil, err
	}
	if in.AssignedTo != nil {
		s.bus.Emit(ctx, events.ContactRequestAssigned, ContactRequestEventPayload{
			ID: out.ID, Name: out.Name, Email: out.Email, Subject: out.Subject, AssignedTo: out.AssignedTo,
		})
	}
	return out, nil
}

type ConvertRequestInput struct {
	CustomerID uint      `json:"customer_id" validate:"required"`
	ProjectID  *uint     `json:"project_id"`
	StartsAt   time.Time `json:"starts_at" validate:"required"`
	EndsAt     time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
	Location   string    `json:"location" validate:"max=255"`
	Notes      string    `json:"notes" validate:"max=2000"`
}

// ConvertToAppointment books an appointment out of an open contact request.
// The appointment takes the request's subject as its title, and the request
// is marked resolved once the booking exists.
func (s *ContactRequestService) ConvertToAppointment(ctx context.Context, id uint, in ConvertRequestInput) (*models.Appointment, error) {
	req, err := s.crud.GetByID(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	if req.Status == "resolved" || req.Status == "closed" {
		return nil, apperr.Conflict("contact request is already " + req.Status)
	}
	notes := in.Notes
	if notes == "" {
		notes = req.Message
	}
	appt, err := s.appointments.Create(ctx, CreateAppointmentInput{
		Title:      req.Subject,
		CustomerID: in.CustomerID,
		ProjectID:  in.ProjectID,
		StartsAt:   in.StartsAt,
		EndsAt:     in.EndsAt,
		Location:   in.Location,
		Notes:      notes,
	})
	if err != nil {
		return nil, err
	}
	if _, err := s.crud.Update(ctx, id, struct{}{}, map[string]any{"status": "resolved"}); err != nil {
		s.crud.Lg.Warnw("request converted but not resolved", "request_id", id, "appointment_id", appt.ID, "error", err)
	}
	return appt, nil
}

func (s *ContactRequestService) GetByID(ctx context.Context, id uint) (*models.ContactRequest, error) {
	return s.crud.GetByID(ctx, id, nil)
}

func (s *ContactRequestService) Delete(ctx context.Context, id uint) error {
	return s.crud.Delete(ctx, id)
}

func (s *ContactRequestService) List(ctx context.Context, status string, assignedTo uint, page, limit int) (*repository.PageResult[models.ContactRequest], error) {
	criteria := repository.Criteria{}
	if status != "" {
		criteria["status"] = status
	}
	if assignedTo != 0 {
		criteria["assigned_to"] = assignedTo
	}
	return s.crud.Paginate(ctx, criteria, &repository.QueryOptions{Page: page, Limit: limit})
}
