package repository

import (
	"github.com/starmatch/starmatch/internal/astro"
	"github.com/starmatch/starmatch/internal/model"
)

// userColumns is the select list shared by both SQL stores.
const userColumns = `id, name, email, birth_date, birth_time, birth_place,
	sun_sign, moon_sign, rising_sign, venus_sign, mars_sign, jupiter_sign,
	created_at`

// signValues returns the stored labels in astro.Bodies column order.
func signValues(u *model.User) []any {
	out := make([]any, len(astro.Bodies))
	for i, b := range astro.Bodies {
		out[i] = string(u.Sign(b))
	}
	return out
}

// signRow receives the six sign columns during a scan.
type signRow [6]string

func (r *signRow) targets() []any {
	out := make([]any, len(r))
	for i := range r {
		out[i] = &r[i]
	}
	return out
}

func (r *signRow) placements() astro.Placements {
	p := make(astro.Placements, len(astro.Bodies))
	for i, b := range astro.Bodies {
		s := astro.Sign(r[i])
		if !s.IsValid() {
			s = astro.Unknown
		}
		p[b] = s
	}
	return p
}
