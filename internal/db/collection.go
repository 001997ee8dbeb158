package db

import (
	"context"

	"github.com/ukydev/car-showroom/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCollection defines the interface for user database operations.
type UserCollection interface {
	InsertUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error
}

// BrandFilter narrows brand listings.
type BrandFilter struct {
	Active *bool
	Search string
}

// BrandCollection defines the interface for brand data operations.
type BrandCollection interface {
	InsertBrand(ctx context.Context, brand *models.Brand) error
	FindBrands(ctx context.Context, filter BrandFilter) ([]models.Brand, error)
	FindBrandByID(ctx context.Context, id string) (*models.Brand, error)
	// FindBrandByName matches the whole name, ignoring case.
	FindBrandByName(ctx context.Context, name string) (*models.Brand, error)
	BrandNameExists(ctx context.Context, name string, excludeID primitive.ObjectID) (bool, error)
	UpdateBrand(ctx context.Context, brand *models.Brand) error
	SetBrandStatus(ctx context.Context, id string, active bool) (*models.Brand, error)
	DeleteBrand(ctx context.Context, id primitive.ObjectID) error
	// IncrementCarCount atomically adds delta to carCount. A decrement that
	// would take the count below zero leaves it unchanged.
	IncrementCarCount(ctx context.Context, id primitive.ObjectID, delta int64) error
	SetCarCount(ctx context.Context, id primitive.ObjectID, count int64) error
}

// CarFilter narrows car listings. Zero values do not filter.
type CarFilter struct {
	Search       string
	Brand        string
	Category     string
	MinPrice     *float64
	MaxPrice     *float64
	Year         int
	FuelType     string
	Transmission string
	Status       models.CarStatus
	Featured     *bool
}

// CarCollection defines the interface for car data operations.
type CarCollection interface {
	InsertCar(ctx context.Context, car *models.Car) error
	FindCars(ctx context.Context, filter CarFilter, opts ListOptions) ([]models.Car, int64, error)
	FindFeaturedCars(ctx context.Context, limit int) ([]models.Car, error)
	FindCarsByBrand(ctx context.Context, brand string) ([]models.Car, error)
	FindCarByID(ctx context.Context, id string) (*models.Car, error)
	// IncrementViews adds one view and returns the updated car.
	IncrementViews(ctx context.Context, id string) (*models.Car, error)
	UpdateCar(ctx context.Context, car *models.Car) error
	SetCarStatus(ctx context.Context, id string, status models.CarStatus) (*models.Car, error)
	ToggleCarFeatured(ctx context.Context, id string) (*models.Car, error)
	DeleteCar(ctx context.Context, id primitive.ObjectID) error
	// CountCarsByBrand counts cars whose brand equals name, ignoring case.
	CountCarsByBrand(ctx context.Context, name string) (int64, error)
	// RenameBrand rewrites the brand field of every car named from.
	RenameBrand(ctx context.Context, from, to string) (int64, error)
	CarStats(ctx context.Context) (*models.CarStats, error)
}

// BannerCollection defines the interface for banner data operations.
type BannerCollection interface {
	InsertBanner(ctx context.Context, banner *models.Banner) error
	FindBanners(ctx context.Context, active *bool) ([]models.Banner, error)
	FindBannerByID(ctx context.Context, id string) (*models.Banner, error)
	UpdateBanner(ctx context.Context, banner *models.Banner) error
	SetBannerStatus(ctx context.Context, id string, active bool) (*models.Banner, error)
	DeleteBanner(ctx context.Context, id string) error
	ReorderBanners(ctx context.Context, items []models.BannerOrderItem) error
}

// RentalFilter narrows rental listings.
type RentalFilter struct {
	Search   string
	Brand    string
	MinPrice *float64
	MaxPrice *float64
}

// RentalCollection defines the interface for rental data operations.
type RentalCollection interface {
	InsertRental(ctx context.Context, rental *models.Rental) error
	FindRentals(ctx context.Context, filter RentalFilter, opts ListOptions) ([]models.Rental, int64, error)
	FindRentalByID(ctx context.Context, id string) (*models.Rental, error)
	UpdateRental(ctx context.Context, rental *models.Rental) error
	DeleteRental(ctx context.Context, id string) error
	RentalStats(ctx context.Context) (*models.RentalStats, error)
}

var (
	_ UserCollection   = (*MongoUserCollection)(nil)
	_ BrandCollection  = (*MongoBrandCollection)(nil)
	_ CarCollection    = (*MongoCarCollection)(nil)
	_ BannerCollection = (*MongoBannerCollection)(nil)
	_ RentalCollection = (*MongoRentalCollection)(nil)
	_ Transactor       = (*Store)(nil)
)
