// Package seed holds the idempotent startup tasks run by cmd/api.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joliday/backend/internal/domain"
	"github.com/joliday/backend/internal/repo"
)

//go:embed demo.yaml
var demoYAML []byte

// EnsureRoles creates every role unless the Admin role already exists.
func EnsureRoles(ctx context.Context, users repo.UserRepo) error {
	ok, err := users.RoleExists(ctx, domain.RoleAdmin)
	if err != nil {
		return fmt.Errorf("seed.EnsureRoles: %w", err)
	}
	if ok {
		return nil
	}
	for _, role := range domain.Roles {
		if err := users.CreateRole(ctx, role); err != nil {
			return fmt.Errorf("seed.EnsureRoles: %w", err)
		}
	}
	return nil
}

// Fixture is the shape of demo.yaml.
type Fixture struct {
	Users []struct {
		Key       string `yaml:"key"`
		Email     string `yaml:"email"`
		FirstName string `yaml:"first_name"`
		Name      string `yaml:"name"`
	} `yaml:"users"`
	Trip struct {
		Name           string   `yaml:"name"`
		DurationMonths int      `yaml:"duration_months"`
		Owner          string   `yaml:"owner"`
		Members        []string `yaml:"members"`
		Invites        []string `yaml:"invites"`
		Address        struct {
			Country      string `yaml:"country"`
			PostalCode   string `yaml:"postal_code"`
			City         string `yaml:"city"`
			StreetName   string `yaml:"street_name"`
			StreetNumber string `yaml:"street_number"`
		} `yaml:"address"`
	} `yaml:"trip"`
}

// LoadFixture parses the embedded demo data.
func LoadFixture() (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(demoYAML, &f); err != nil {
		return Fixture{}, fmt.Errorf("seed.LoadFixture: %w", err)
	}
	return f, nil
}

// Repos groups the stores Demo writes to.
type Repos struct {
	Users   repo.UserRepo
	Trips   repo.TripRepo
	Invites repo.InviteRepo
}

// Demo inserts the demo users, one trip starting today and one pending
// invite. It does nothing if any user already exists.
// Reports whether data was inserted.
func Demo(ctx context.Context, r Repos, now time.Time) (bool, error) {
	n, err := r.Users.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("seed.Demo: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	f, err := LoadFixture()
	if err != nil {
		return false, err
	}

	byKey := make(map[string]domain.User, len(f.Users))
	for _, fu := range f.Users {
		u, err := r.Users.Create(ctx, domain.User{
			Email:     fu.Email,
			Name:      fu.Name,
			FirstName: fu.FirstName,
			AvatarURL: domain.DefaultAvatarURL,
			Role:      domain.RoleVacationer,
		})
		if err != nil {
			return false, fmt.Errorf("seed.Demo: user %s: %w", fu.Key, err)
		}
		byKey[fu.Key] = u
	}

	owner, ok := byKey[f.Trip.Owner]
	if !ok {
		return false, fmt.Errorf("seed.Demo: unknown owner %q", f.Trip.Owner)
	}
	start := domain.DateOf(now)
	trip, err := r.Trips.Create(ctx, domain.Trip{
		Name:      f.Trip.Name,
		StartDate: start,
		EndDate:   start.AddDate(0, f.Trip.DurationMonths, 0),
		Address: domain.Address{
			Country:      f.Trip.Address.Country,
			PostalCode:   f.Trip.Address.PostalCode,
			City:         f.Trip.Address.City,
			StreetName:   f.Trip.Address.StreetName,
			StreetNumber: f.Trip.Address.StreetNumber,
		},
		Owner: owner,
	})
	if err != nil {
		return false, fmt.Errorf("seed.Demo: trip: %w", err)
	}

	for _, key := range f.Trip.Members {
		if err := r.Trips.AddMember(ctx, trip.ID, byKey[key].ID); err != nil {
			return false, fmt.Errorf("seed.Demo: member %s: %w", key, err)
		}
	}
	for _, key := range f.Trip.Invites {
		if _, err := r.Invites.Create(ctx, trip.ID, byKey[key].ID); err != nil {
			return false, fmt.Errorf("seed.Demo: invite %s: %w", key, err)
		}
	}
	return true, nil
}
