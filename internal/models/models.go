package models

import "time"

// User roles and statuses. Status "deleted" is the soft-delete marker; the row
// stays until an explicit hard delete.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"

	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
	StatusDeleted   = "deleted"
)

type User struct {
	ID               uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name             string     `gorm:"not null" json:"name"`
	Email            string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash     string     `gorm:"not null" json:"-"`
	Role             string     `gorm:"not null;default:employee" json:"role"`
	Status           string     `gorm:"not null;default:active" json:"status"`
	ProfilePicture   string     `json:"profile_picture,omitempty"`
	ResetTokenHash   *string    `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// RefreshToken is keyed by the opaque token string itself. Rows are never
// deleted in the normal flow; revocation only sets the flag so rotation
// chains stay auditable via ReplacedByToken.
type RefreshToken struct {
	Token           string     `gorm:"primaryKey;size:128" json:"token"`
	UserID          uint       `gorm:"index;not null" json:"user_id"`
	ExpiresAt       time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt       time.Time  `json:"created_at"`
	CreatedByIP     string     `json:"created_by_ip,omitempty"`
	IsRevoked       bool       `gorm:"not null;default:false" json:"is_revoked"`
	RevokedAt       *time.Time `json:"revoked_at,omitempty"`
	RevokedByIP     string     `json:"revoked_by_ip,omitempty"`
	ReplacedByToken string     `json:"replaced_by_token,omitempty"`
}

// IsActive reports whether the token is still usable at the given instant.
// A revoked token stays inactive forever; expiry is enforced at read time.
func (t *RefreshToken) IsActive(now time.Time) bool {
	return !t.IsRevoked && t.ExpiresAt.After(now)
}

// Audit carries the actor/timestamp fields the generic service injects.
type Audit struct {
	CreatedBy *uint     `json:"created_by,omitempty"`
	UpdatedBy *uint     `json:"updated_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Audit) StampCreate(actor *uint, now time.Time) {
	a.CreatedBy = actor
	a.UpdatedBy = actor
	a.CreatedAt = now
	a.UpdatedAt = now
}

func (a *Audit) StampUpdate(actor *uint, now time.Time) {
	a.UpdatedBy = actor
	a.UpdatedAt = now
}

type Customer struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name    string `gorm:"not null" json:"name"`
	Company string `json:"company,omitempty"`
	Email   string `gorm:"uniqueIndex;not null" json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Status  string `gorm:"not null;default:active" json:"status"`
	Notes   string `json:"notes,omitempty"`
	Audit
}

type Project struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string     `gorm:"not null" json:"name"`
	Description string     `json:"description,omitempty"`
	CustomerID  uint       `gorm:"index;not null" json:"customer_id"`
	Customer    *Customer  `gorm:"constraint:OnDelete:RESTRICT" json:"customer,omitempty"`
	Status      string     `gorm:"not null;default:planned" json:"status"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Budget      float64    `json:"budget"`
	Audit
}

// ServiceItem is a service-catalog entry (what the business offers), named to
// avoid colliding with the service layer.
type ServiceItem struct {
	ID              uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string  `gorm:"uniqueIndex;not null" json:"name"`
	Description     string  `json:"description,omitempty"`
	Price           float64 `gorm:"not null" json:"price"`
	DurationMinutes int     `json:"duration_minutes"`
	Active          bool    `gorm:"not null;default:true" json:"active"`
	Audit
}

type Appointment struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title      string    `gorm:"not null" json:"title"`
	CustomerID uint      `gorm:"index;not null" json:"customer_id"`
	Customer   *Customer `gorm:"constraint:OnDelete:RESTRICT" json:"customer,omitempty"`
	ProjectID  *uint     `gorm:"index" json:"project_id,omitempty"`
	StartsAt   time.Time `gorm:"index;not null" json:"starts_at"`
	EndsAt     time.Time `gorm:"not null" json:"ends_at"`
	Location   string    `json:"location,omitempty"`
	Status     string    `gorm:"not null;default:scheduled" json:"status"`
	Notes      string    `json:"notes,omitempty"`
	Audit
}

type ContactRequest struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string `gorm:"not null" json:"name"`
	Email      string `gorm:"not null" json:"email"`
	Phone      string `json:"phone,omitempty"`
	Subject    string `gorm:"not null" json:"subject"`
	Message    string `json:"message,omitempty"`
	Status     string `gorm:"not null;default:new" json:"status"`
	AssignedTo *uint  `gorm:"index" json:"assigned_to,omitempty"`
	Audit
}

type Notification struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	Type      string     `gorm:"not null" json:"type"`
	Title     string     `gorm:"not null" json:"title"`
	Message   string     `json:"message,omitempty"`
	Data      JSONB      `gorm:"type:jsonb;default:'{}'" json:"data"`
	Read      bool       `gorm:"not null;default:false" json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ActivityLog records who did what to which entity. Bulk operations write a
// single aggregated row.
type ActivityLog struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     *uint     `gorm:"index" json:"user_id,omitempty"`
	EntityType string    `gorm:"not null" json:"entity_type"`
	EntityID   string    `json:"entity_id,omitempty"`
	Action     string    `gorm:"not null" json:"action"`
	Metadata   JSONB     `gorm:"type:jsonb;default:'{}'" json:"metadata"`
	CreatedAt  time.Time `json:"created_at"`
}
