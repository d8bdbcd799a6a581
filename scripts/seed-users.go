package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/starmatch/starmatch/internal/astro"
	"github.com/starmatch/starmatch/internal/compat"
	"github.com/starmatch/starmatch/internal/repository"
	"github.com/starmatch/starmatch/internal/service"
)

type seedUser struct {
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	BirthDate  string `json:"birthDate"`
	BirthTime  string `json:"birthTime"`
	BirthPlace string `json:"birthPlace"`
}

type output struct {
	Name   string           `json:"name"`
	ID     int64            `json:"id,omitempty"`
	Signs  astro.Placements `json:"signs,omitempty"`
	Status string           `json:"status"`
}

var demoUsers = []seedUser{
	{Name: "Ada", Email: "ada@example.com", BirthDate: "1990-04-15", BirthTime: "08:30", BirthPlace: "London"},
	{Name: "Ben", Email: "ben@example.com", BirthDate: "1988-08-01", BirthTime: "14:10", BirthPlace: "Boca Raton"},
	{Name: "Cleo", BirthDate: "1995/12/03", BirthTime: "23:45", BirthPlace: "Lisbon"},
	{Name: "Dev", BirthDate: "1992-05-09", BirthTime: "06:00", BirthPlace: "Mumbai"},
}

func main() {
	var (
		driver      = flag.String("driver", envOr("STORE_DRIVER", repository.DriverSQLite), "Store driver: sqlite or postgres")
		databaseURL = flag.String("database-url", envOr("DATABASE_URL", "users.db"), "SQLite path or PostgreSQL connection string")
		method      = flag.String("method", string(astro.MethodApprox), "Sign method: approx or calendar")
		file        = flag.String("file", "", "JSON array of users to register (default: built-in demo users)")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	users, err := loadUsers(*file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := repository.Open(ctx, repository.Options{Driver: *driver, DSN: *databaseURL})
	if err != nil {
		fmt.Fprintln(os.Stderr, "open store:", err)
		os.Exit(1)
	}
	defer store.Close()

	svc, err := newService(store, astro.Method(*method))
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	results := make([]output, 0, len(users))
	for _, u := range users {
		created, err := svc.Register(ctx, service.RegisterInput{
			Name:       u.Name,
			Email:      u.Email,
			BirthDate:  u.BirthDate,
			BirthTime:  u.BirthTime,
			BirthPlace: u.BirthPlace,
		})
		switch {
		case errors.Is(err, service.ErrEmailRegistered):
			results = append(results, output{Name: u.Name, Status: "skipped"})
		case err != nil:
			fmt.Fprintf(os.Stderr, "register %s: %v\n", u.Name, err)
			os.Exit(1)
		default:
			results = append(results, output{Name: u.Name, ID: created.ID, Signs: created.Signs, Status: "created"})
		}
	}

	switch strings.ToLower(*format) {
	case "plain":
		for _, r := range results {
			fmt.Printf("%-8s %-10s %d\n", r.Status, r.Name, r.ID)
		}
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(results)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func newService(store repository.UserStore, method astro.Method) (*service.UserService, error) {
	calc, err := astro.NewCalculator(method)
	if err != nil {
		return nil, err
	}
	weights, err := compat.Profile(compat.ProfilePlanetary)
	if err != nil {
		return nil, err
	}
	scorer, err := compat.NewScorer(weights, true)
	if err != nil {
		return nil, err
	}
	return service.NewUserService(store, calc, scorer, service.Options{})
}

func loadUsers(path string) ([]seedUser, error) {
	if path == "" {
		return demoUsers, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var users []seedUser
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return users, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
