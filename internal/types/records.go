//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// Application is a tracked job application owned by a user.
type Application struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Company     string     `json:"company"`
	Position    string     `json:"position"`
	Status      string     `json:"status"`
	JobURL      *string    `json:"job_url"`
	Notes       *string    `json:"notes"`
	AppliedDate *time.Time `json:"applied_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ApplicationInput is the writable subset of an Application.
type ApplicationInput struct {
	Company     string     `json:"company" validate:"required,max=200"`
	Position    string     `json:"position" validate:"required,max=200"`
	Status      string     `json:"status" validate:"required,oneof=wishlist applied interviewing offer rejected withdrawn"`
	JobURL      *string    `json:"job_url" validate:"omitempty,url,max=2000"`
	Notes       *string    `json:"notes" validate:"omitempty,max=50000"`
	AppliedDate *time.Time `json:"applied_date"`
}

// Contact is a networking contact owned by a user.
type Contact struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	Name            string     `json:"name"`
	Company         *string    `json:"company"`
	Role            *string    `json:"role"`
	Email           *string    `json:"email"`
	LinkedInURL     *string    `json:"linkedin_url"`
	Notes           *string    `json:"notes"`
	LastInteraction *time.Time `json:"last_interaction"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ContactInput is the writable subset of a Contact.
type ContactInput struct {
	Name            string     `json:"name" validate:"required,max=200"`
	Company         *string    `json:"company" validate:"omitempty,max=200"`
	Role            *string    `json:"role" validate:"omitempty,max=200"`
	Email           *string    `json:"email" validate:"omitempty,email"`
	LinkedInURL     *string    `json:"linkedin_url" validate:"omitempty,url,max=2000"`
	Notes           *string    `json:"notes" validate:"omitempty,max=50000"`
	LastInteraction *time.Time `json:"last_interaction"`
}
