// Package model defines domain entities for the application.
package model

import (
	"time"

	"github.com/starmatch/starmatch/internal/astro"
)

// User is a registered person and the placements derived from their birth
// data at registration time. Records are never updated.
type User struct {
	ID         int64            `json:"id"`
	Name       string           `json:"name"`
	Email      *string          `json:"email,omitempty"`
	BirthDate  string           `json:"birth_date"`
	BirthTime  string           `json:"birth_time"`
	BirthPlace string           `json:"birth_place"`
	Signs      astro.Placements `json:"signs"`
	CreatedAt  time.Time        `json:"created_at"`
}

// Sign returns the stored sign for body, or astro.Unknown.
func (u *User) Sign(body astro.Body) astro.Sign {
	return u.Signs.Get(body)
}

// HasEmail reports whether an email address was supplied.
func (u *User) HasEmail() bool {
	return u.Email != nil && *u.Email != ""
}
