// Package seed bootstraps the admin account and loads sample showroom data.
package seed

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/car-showroom/internal/auth"
	"github.com/ukydev/car-showroom/internal/catalog"
	"github.com/ukydev/car-showroom/internal/config"
	"github.com/ukydev/car-showroom/internal/db"
	"github.com/ukydev/car-showroom/internal/models"
)

// Seeder writes bootstrap data through the same paths the API uses, so
// brand car counts come out right.
type Seeder struct {
	users   db.UserCollection
	banners db.BannerCollection
	brands  db.BrandCollection
	catalog *catalog.Service
	auth    *auth.Service
}

func New(users db.UserCollection, banners db.BannerCollection, brands db.BrandCollection, catalogService *catalog.Service, authService *auth.Service) *Seeder {
	return &Seeder{users: users, banners: banners, brands: brands, catalog: catalogService, auth: authService}
}

// EnsureAdmin creates the configured admin account unless a user with that
// email already exists. It reports whether an account was created.
func (s *Seeder) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) (bool, error) {
	existing, err := s.users.FindUserByEmail(ctx, cfg.Email)
	if err == nil {
		if !existing.IsAdmin() {
			log.WithField("email", existing.Email).Warn("admin email belongs to a non-admin account")
		}
		return false, nil
	}
	if !db.IsNotFound(err) {
		return false, err
	}

	if err := s.auth.ValidatePassword(cfg.Password); err != nil {
		return false, err
	}
	hash, err := s.auth.HashPassword(cfg.Password)
	if err != nil {
		return false, err
	}
	admin := &models.User{
		Name:         cfg.Name,
		Email:        cfg.Email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := models.Validate(admin); err != nil {
		return false, err
	}
	if err := s.users.InsertUser(ctx, admin); err != nil {
		if db.IsDuplicate(err) {
			return false, nil
		}
		return false, fmt.Errorf("create admin: %w", err)
	}
	log.WithField("email", admin.Email).Info("admin account created")
	return true, nil
}

// Summary counts what a Sample run inserted.
type Summary struct {
	Banners int
	Brands  int
	Cars    int
}

// Sample loads the sample catalog. Brands that already exist are left alone
// together with their cars; banners are only added to an empty collection.
func (s *Seeder) Sample(ctx context.Context) (Summary, error) {
	var sum Summary

	existing, err := s.banners.FindBanners(ctx, nil)
	if err != nil {
		return sum, err
	}
	if len(existing) == 0 {
		for _, b := range sampleBanners() {
			banner := b
			if err := banner.Validate(); err != nil {
				return sum, fmt.Errorf("banner %q: %w", banner.Title, err)
			}
			if err := s.banners.InsertBanner(ctx, &banner); err != nil {
				return sum, err
			}
			sum.Banners++
		}
	}

	created := map[string]bool{}
	for _, b := range sampleBrands() {
		brand := b
		if _, err := s.brands.FindBrandByName(ctx, brand.Name); err == nil {
			continue
		} else if !db.IsNotFound(err) {
			return sum, err
		}
		if err := s.catalog.CreateBrand(ctx, &brand); err != nil {
			return sum, fmt.Errorf("brand %q: %w", brand.Name, err)
		}
		created[brand.Name] = true
		sum.Brands++
	}

	for _, c := range sampleCars() {
		if !created[c.Brand] {
			continue
		}
		car := c
		if err := s.catalog.CreateCar(ctx, &car); err != nil {
			return sum, fmt.Errorf("car %q: %w", car.Name, err)
		}
		sum.Cars++
	}

	log.WithFields(log.Fields{"banners": sum.Banners, "brands": sum.Brands, "cars": sum.Cars}).Info("sample data loaded")
	return sum, nil
}
