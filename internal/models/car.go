package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CarStatus is the sales state of a car.
type CarStatus string

const (
	CarAvailable CarStatus = "available"
	CarSold      CarStatus = "sold"
	CarReserved  CarStatus = "reserved"
)

// IsValidCarStatus checks if a status is one of the known sales states.
func IsValidCarStatus(status CarStatus) bool {
	switch status {
	case CarAvailable, CarSold, CarReserved:
		return true
	default:
		return false
	}
}

// Specifications holds the technical sheet of a car.
type Specifications struct {
	Engine       string `bson:"engine" json:"engine" validate:"required"`
	FuelType     string `bson:"fuelType" json:"fuelType" validate:"required,oneof=Petrol Diesel Electric Hybrid CNG"`
	Transmission string `bson:"transmission" json:"transmission" validate:"required,oneof=Manual Automatic CVT"`
	Seating      int    `bson:"seating" json:"seating" validate:"required,gte=1,lte=15"`
	FuelEconomy  string `bson:"fuelEconomy" json:"fuelEconomy" validate:"required"`
	TopSpeed     string `bson:"topSpeed,omitempty" json:"topSpeed,omitempty"`
	Acceleration string `bson:"acceleration,omitempty" json:"acceleration,omitempty"`
	Color        string `bson:"color" json:"color" validate:"required"`
	Mileage      int    `bson:"mileage" json:"mileage" validate:"gte=0"`
}

// Car is a vehicle listed for sale. Brand holds the brand name, not an ID.
type Car struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name           string             `bson:"name" json:"name" validate:"required"`
	Brand          string             `bson:"brand" json:"brand" validate:"required"`
	Model          string             `bson:"model" json:"model" validate:"required"`
	Year           int                `bson:"year" json:"year" validate:"required,gte=1900,yearmax=1"`
	Price          float64            `bson:"price" json:"price" validate:"gte=0"`
	Description    string             `bson:"description" json:"description" validate:"required,max=1000"`
	Images         []string           `bson:"images" json:"images"`
	Specifications Specifications     `bson:"specifications" json:"specifications"`
	Features       []string           `bson:"features" json:"features"`
	Category       string             `bson:"category" json:"category" validate:"required,oneof=Sedan SUV Hatchback Coupe Convertible Wagon Pickup"`
	Status         CarStatus          `bson:"status" json:"status" validate:"required,oneof=available sold reserved"`
	IsRental       bool               `bson:"isRental" json:"isRental"`
	RentalPrice    float64            `bson:"rentalPrice" json:"rentalPrice" validate:"gte=0"`
	IsFeatured     bool               `bson:"isFeatured" json:"isFeatured"`
	Views          int64              `bson:"views" json:"views"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewCar returns a car with the schema defaults applied.
func NewCar() Car {
	return Car{Status: CarAvailable, Images: []string{}, Features: []string{}}
}

// Normalize trims text fields and drops empty feature entries.
func (c *Car) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Brand = strings.TrimSpace(c.Brand)
	c.Model = strings.TrimSpace(c.Model)
	if c.Status == "" {
		c.Status = CarAvailable
	}
	features := c.Features[:0]
	for _, f := range c.Features {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}
	c.Features = features
	if c.Features == nil {
		c.Features = []string{}
	}
	if c.Images == nil {
		c.Images = []string{}
	}
}

// Validate checks the car against its schema.
func (c *Car) Validate() error {
	c.Normalize()
	return Validate(c)
}

// GroupCount is one bucket of an aggregate count.
type GroupCount struct {
	ID    string `bson:"_id" json:"_id"`
	Count int64  `bson:"count" json:"count"`
}

// CarStatsOverview holds headline counters for the admin dashboard.
type CarStatsOverview struct {
	TotalCars     int64 `json:"totalCars"`
	AvailableCars int64 `json:"availableCars"`
	SoldCars      int64 `json:"soldCars"`
	ReservedCars  int64 `json:"reservedCars"`
	FeaturedCars  int64 `json:"featuredCars"`
}

// CarStats is the payload of the car statistics endpoint.
type CarStats struct {
	Overview       CarStatsOverview `json:"overview"`
	CarsByStatus   []GroupCount     `json:"carsByStatus"`
	CarsByCategory []GroupCount     `json:"carsByCategory"`
	CarsByBrand    []GroupCount     `json:"carsByBrand"`
}
