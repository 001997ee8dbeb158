package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Brand is a car manufacturer shown in the showroom. CarCount caches the
// number of cars whose Brand field names this brand.
type Brand struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name" validate:"required,max=50"`
	Logo        string             `bson:"logo" json:"logo" validate:"required"`
	Description string             `bson:"description" json:"description" validate:"max=500"`
	Website     string             `bson:"website,omitempty" json:"website,omitempty"`
	Country     string             `bson:"country,omitempty" json:"country,omitempty"`
	FoundedYear int                `bson:"foundedYear,omitempty" json:"foundedYear,omitempty" validate:"omitempty,gte=1800,yearmax=0"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	CarCount    int64              `bson:"carCount" json:"carCount"`
	Order       int                `bson:"order" json:"order"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// BrandWithCars is the payload of the brand-by-name lookup.
type BrandWithCars struct {
	Brand `bson:",inline"`
	Cars  []Car `json:"cars"`
}

// NewBrand returns a brand with the schema defaults applied.
func NewBrand() Brand {
	return Brand{IsActive: true}
}

// Normalize trims free-text fields.
func (b *Brand) Normalize() {
	b.Name = strings.TrimSpace(b.Name)
	b.Description = strings.TrimSpace(b.Description)
	b.Website = strings.TrimSpace(b.Website)
	b.Country = strings.TrimSpace(b.Country)
}

// Validate checks the brand against its schema.
func (b *Brand) Validate() error {
	b.Normalize()
	return Validate(b)
}
