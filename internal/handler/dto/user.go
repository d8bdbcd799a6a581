// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"github.com/starmatch/starmatch/internal/astro"
	"github.com/starmatch/starmatch/internal/model"
	"github.com/starmatch/starmatch/internal/service"
)

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Name       string `json:"name"`
	BirthDate  string `json:"birthDate"`
	BirthTime  string `json:"birthTime"`
	BirthPlace string `json:"birthPlace"`
	Email      string `json:"email,omitempty"`
}

// ToInput converts the request into service input.
func (r *RegisterRequest) ToInput() service.RegisterInput {
	return service.RegisterInput{
		Name:       r.Name,
		Email:      r.Email,
		BirthDate:  r.BirthDate,
		BirthTime:  r.BirthTime,
		BirthPlace: r.BirthPlace,
	}
}

// SignsResponse lists the sign derived for every tracked body.
type SignsResponse struct {
	Sun     string `json:"sun"`
	Moon    string `json:"moon"`
	Rising  string `json:"rising"`
	Venus   string `json:"venus"`
	Mars    string `json:"mars"`
	Jupiter string `json:"jupiter"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	Message string        `json:"message"`
	ID      int64         `json:"id"`
	Signs   SignsResponse `json:"signs"`
}

// ToRegisterResponse builds the response for a newly stored user.
func ToRegisterResponse(u *model.User) RegisterResponse {
	return RegisterResponse{
		Message: "User registered successfully",
		ID:      u.ID,
		Signs: SignsResponse{
			Sun:     string(u.Sign(astro.Sun)),
			Moon:    string(u.Sign(astro.Moon)),
			Rising:  string(u.Sign(astro.Rising)),
			Venus:   string(u.Sign(astro.Venus)),
			Mars:    string(u.Sign(astro.Mars)),
			Jupiter: string(u.Sign(astro.Jupiter)),
		},
	}
}

// MatchResponse is a single compatible user.
type MatchResponse struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	ID    int64  `json:"id"`
}

// MatchListResponse is the body of GET /match/{id}.
type MatchListResponse struct {
	Matches []MatchResponse `json:"matches"`
	Count   int             `json:"count"`
}

// ToMatchListResponse converts service matches. The list is never null.
func ToMatchListResponse(matches []service.Match) MatchListResponse {
	out := make([]MatchResponse, len(matches))
	for i, m := range matches {
		out[i] = MatchResponse{Name: m.Name, Score: m.Score, ID: m.ID}
	}
	return MatchListResponse{Matches: out, Count: len(out)}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
