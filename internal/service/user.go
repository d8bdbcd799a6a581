// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/starmatch/starmatch/internal/astro"
	"github.com/starmatch/starmatch/internal/compat"
	"github.com/starmatch/starmatch/internal/geocode"
	"github.com/starmatch/starmatch/internal/metrics"
	"github.com/starmatch/starmatch/internal/model"
	"github.com/starmatch/starmatch/internal/repository"
)

// Service errors.
var (
	ErrMissingFields    = errors.New("missing required fields")
	ErrEmailRegistered  = errors.New("email already registered")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidThreshold = errors.New("match threshold must be between 0 and 100")
)

// DefaultMatchThreshold is the score a candidate must strictly exceed.
const DefaultMatchThreshold = 50

// UserService registers users and finds compatible matches.
type UserService struct {
	store     repository.UserStore
	calc      astro.Calculator
	scorer    *compat.Scorer
	geocoder  geocode.Geocoder
	fallback  astro.Coordinate
	threshold int
	logger    *slog.Logger
	metrics   metrics.Recorder
}

// Options tunes a UserService. Zero values select defaults.
type Options struct {
	// Geocoder resolves birth places. Failed lookups use DefaultLocation.
	// Nil uses DefaultLocation for everyone.
	Geocoder geocode.Geocoder
	// DefaultLocation is used when the geocoder is nil or fails.
	DefaultLocation *astro.Coordinate
	Threshold       *int
	Logger          *slog.Logger
	Recorder        metrics.Recorder
}

// NewUserService creates a new UserService.
func NewUserService(store repository.UserStore, calc astro.Calculator, scorer *compat.Scorer, opts Options) (*UserService, error) {
	threshold := DefaultMatchThreshold
	if opts.Threshold != nil {
		threshold = *opts.Threshold
	}
	if threshold < 0 || threshold > compat.MaxScore {
		return nil, ErrInvalidThreshold
	}

	fallback := geocode.DefaultCoordinate
	if opts.DefaultLocation != nil {
		fallback = *opts.DefaultLocation
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NewNoop()
	}

	var geocoder geocode.Geocoder
	if opts.Geocoder != nil {
		geocoder = geocode.NewFallback(opts.Geocoder, fallback, opts.Logger, opts.Recorder)
	}

	return &UserService{
		store:     store,
		calc:      calc,
		scorer:    scorer,
		geocoder:  geocoder,
		fallback:  fallback,
		threshold: threshold,
		logger:    opts.Logger,
		metrics:   opts.Recorder,
	}, nil
}

// RegisterInput defines input for registering a user.
type RegisterInput struct {
	Name       string
	Email      string
	BirthDate  string
	BirthTime  string
	BirthPlace string
}

// Register derives placements for in and stores the new user.
// Unparseable dates or times never fail; they yield Unknown signs.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveRegisterDuration(time.Since(start)) }()

	in.Name = strings.TrimSpace(in.Name)
	in.BirthDate = strings.TrimSpace(in.BirthDate)
	in.BirthTime = strings.TrimSpace(in.BirthTime)
	in.BirthPlace = strings.TrimSpace(in.BirthPlace)
	if in.Name == "" || in.BirthDate == "" || in.BirthTime == "" || in.BirthPlace == "" {
		return nil, ErrMissingFields
	}

	user := &model.User{
		Name:       in.Name,
		BirthDate:  in.BirthDate,
		BirthTime:  in.BirthTime,
		BirthPlace: in.BirthPlace,
	}
	if email := strings.ToLower(strings.TrimSpace(in.Email)); email != "" {
		user.Email = &email
	}

	user.Signs = s.calc.Calculate(astro.BirthData{
		Date:     in.BirthDate,
		Time:     in.BirthTime,
		Location: s.locate(ctx, in.BirthPlace),
	})

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			s.metrics.IncDuplicateEmail()
			return nil, ErrEmailRegistered
		}
		return nil, fmt.Errorf("failed to store user: %w", err)
	}

	s.metrics.IncRegistration()
	s.logger.InfoContext(ctx, "user_registered",
		slog.Int64("user_id", user.ID),
		slog.String("sun", string(user.Sign(astro.Sun))),
		slog.String("method", string(s.calc.Method())),
	)

	return user, nil
}

// locate resolves place only when the calculator uses a location. The
// geocoder is wrapped in geocode.Fallback and never fails.
func (s *UserService) locate(ctx context.Context, place string) astro.Coordinate {
	if s.calc.Method() == astro.MethodCalendar || s.geocoder == nil {
		return s.fallback
	}

	coord, _ := s.geocoder.Geocode(ctx, place)
	return coord
}

// Match is a candidate scoring above the threshold.
type Match struct {
	ID    int64
	Name  string
	Score int
}

// Matches scores every other user against id and returns those above the
// threshold, best first. Ties are ordered by ascending id.
func (s *UserService) Matches(ctx context.Context, id int64) ([]Match, error) {
	s.metrics.IncMatchQuery()

	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	others, err := s.store.ListUsersExcluding(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}

	matches := make([]Match, 0, len(others))
	for _, other := range others {
		score := s.scorer.Score(user.Signs, other.Signs)
		if score > s.threshold {
			matches = append(matches, Match{ID: other.ID, Name: other.Name, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})

	s.metrics.AddMatchResults(len(matches))
	s.logger.DebugContext(ctx, "match_query",
		slog.Int64("user_id", id),
		slog.Int("candidates", len(others)),
		slog.Int("matches", len(matches)),
	)

	return matches, nil
}

// Threshold returns the exclusive match threshold.
func (s *UserService) Threshold() int {
	return s.threshold
}
