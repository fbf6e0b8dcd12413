package service

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bizcore/internal/apperr"
	"bizcore/internal/auth"
	"bizcore/internal/models"
	"bizcore/internal/repository"
	"bizcore/internal/validation"
)

// UserService is the admin-facing account management surface. Status changes
// away from active revoke the user's refresh tokens so dead accounts cannot
// keep refreshing sessions.
type UserService struct {
	crud   Crud[models.User]
	repo   *repository.UserRepository
	tokens *repository.RefreshTokenStore
	lg     *zap.SugaredLogger
}

func NewUserService(db *gorm.DB, repo *repository.UserRepository, tokens *repository.RefreshTokenStore, activity *ActivityLogger, lg *zap.SugaredLogger) *UserService {
	return &UserService{
		crud: Crud[models.User]{
			Repo:     repo.Repository,
			Lg:       lg,
			Activity: activity,
			Entity:   "user",
			IDOf:     func(u *models.User) string { return strconv.FormatUint(uint64(u.ID), 10) },
		},
		repo:   repo,
		tokens: tokens,
		lg:     lg,
	}
}

type CreateUserInput struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Role     string `json:"role" validate:"required,oneof=admin manager employee"`
}

type UpdateUserInput struct {
	Name           *string `json:"name" validate:"omitempty,min=2,max=120"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Role           *string `json:"role" validate:"omitempty,oneof=admin manager employee"`
	ProfilePicture *string `json:"profile_picture" validate:"omitempty,max=500"`
}

type UpdateUserStatusInput struct {
	Status string `json:"status" validate:"required,oneof=active inactive suspended deleted"`
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*PublicUser, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("password hashing failed", err)
	}
	u := models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		Role:         in.Role,
		Status:       models.StatusActive,
	}
	out, err := s.crud.Create(ctx, in, &u)
	if err != nil {
		return nil, err
	}
	pub := toPublicUser(out)
	return &pub, nil
}

func (s *UserService) Update(ctx context.Context, id uint, in UpdateUserInput) (*PublicUser, error) {
	changes := map[string]any{}
	if in.Name != nil {
		changes["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		other, err := s.repo.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, apperr.Conflict("user already exists")
		}
		changes["email"] = email
	}
	if in.Role != nil {
		changes["role"] = *in.Role
	}
	if in.ProfilePicture != nil {
		changes["profile_picture"] = *in.ProfilePicture
	}
	out, err := s.crud.Update(ctx, id, in, changes)
	if err != nil {
		return nil, err
	}
	pub := toPublicUser(out)
	return &pub, nil
}

// UpdateStatus performs the explicit status transition; leaving "active"
// triggers a bulk logout.
func (s *UserService) UpdateStatus(ctx context.Context, id uint, in UpdateUserStatusInput) (*PublicUser, error) {
	out, err := s.crud.Update(ctx, id, in, map[string]any{"status": in.Status})
	if err != nil {
		return nil, err
	}
	if in.Status != models.StatusActive {
		if _, err := s.tokens.RevokeAllForUser(ctx, id, ""); err != nil {
			s.lg.Warnw("token revocation after status change failed", "user_id", id, "error", err)
		}
	}
	pub := toPublicUser(out)
	return &pub, nil
}

// BulkUpdateStatus changes many accounts at once: one statement, one
// aggregated activity entry.
func (s *UserService) BulkUpdateStatus(ctx context.Context, ids []uint, in UpdateUserStatusInput) (int64, error) {
	n, err := s.crud.BulkUpdate(ctx, ids, in, map[string]any{"status": in.Status})
	if err != nil {
		return 0, err
	}
	if in.Status != models.StatusActive {
		for _, id := range ids {
			if _, err := s.tokens.RevokeAllForUser(ctx, id, ""); err != nil {
				s.lg.Warnw("token revocation after bulk status change failed", "user_id", id, "error", err)
			}
		}
	}
	return n, nil
}

// SoftDelete marks the account deleted and closes its sessions.
func (s *UserService) SoftDelete(ctx context.Context, id uint) (*PublicUser, error) {
	out, err := s.crud.SoftDelete(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.tokens.RevokeAllForUser(ctx, id, ""); err != nil {
		s.lg.Warnw("token revocation after soft delete failed", "user_id", id, "error", err)
	}
	pub := toPublicUser(out)
	return &pub, nil
}

// HardDelete irreversibly removes the row. Refresh tokens are revoked first
// so the store never holds live tokens for a vanished user.
func (s *UserService) HardDelete(ctx context.Context, id uint) error {
	if _, err := s.crud.GetByID(ctx, id, nil); err != nil {
		return err
	}
	if _, err := s.tokens.RevokeAllForUser(ctx, id, ""); err != nil {
		return err
	}
	return s.crud.Delete(ctx, id)
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*PublicUser, error) {
	u, err := s.crud.GetByID(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	pub := toPublicUser(u)
	return &pub, nil
}

func (s *UserService) List(ctx context.Context, role, status string, page, limit int) (*repository.PageResult[PublicUser], error) {
	criteria := repository.Criteria{}
	if role != "" {
		criteria["role"] = role
	}
	if status != "" {
		criteria["status"] = status
	}
	res, err := s.crud.Paginate(ctx, criteria, &repository.QueryOptions{Page: page, Limit: limit})
	if err != nil {
		return nil, err
	}
	out := &repository.PageResult[PublicUser]{Pagination: res.Pagination}
	out.Data = make([]PublicUser, 0, len(res.Data))
	for i := range res.Data {
		out.Data = append(out.Data, toPublicUser(&res.Data[i]))
	}
	return out, nil
}
