package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rental is a car offered for hire. It is not linked to Car or Brand.
type Rental struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name          string             `bson:"name" json:"name" validate:"required"`
	Brand         string             `bson:"brand" json:"brand" validate:"required"`
	Model         string             `bson:"model" json:"model" validate:"required"`
	Engine        string             `bson:"engine" json:"engine" validate:"required"`
	Fuel          string             `bson:"fuel" json:"fuel" validate:"required"`
	TopSpeed      string             `bson:"topSpeed" json:"topSpeed" validate:"required"`
	Color         string             `bson:"color" json:"color" validate:"required"`
	Description   string             `bson:"description" json:"description"`
	Image         string             `bson:"image" json:"image"`
	AvailableDate time.Time          `bson:"availableDate" json:"availableDate" validate:"required"`
	PricePerDay   float64            `bson:"pricePerDay" json:"pricePerDay" validate:"gte=0"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// MarshalJSON adds the dailyRate alias older clients read.
func (r Rental) MarshalJSON() ([]byte, error) {
	type rental Rental
	return json.Marshal(struct {
		rental
		DailyRate float64 `json:"dailyRate"`
	}{rental(r), r.PricePerDay})
}

// UnmarshalJSON accepts availableDate as RFC 3339 or a plain date, and
// dailyRate as an alias for pricePerDay. Fields absent from data keep their
// current values.
func (r *Rental) UnmarshalJSON(data []byte) error {
	type rental Rental
	aux := struct {
		rental
		AvailableDate *string  `json:"availableDate"`
		DailyRate     *float64 `json:"dailyRate"`
	}{rental: rental(*r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = Rental(aux.rental)

	if aux.DailyRate != nil && !bytes.Contains(data, []byte(`"pricePerDay"`)) {
		r.PricePerDay = *aux.DailyRate
	}
	if aux.AvailableDate != nil {
		s := strings.TrimSpace(*aux.AvailableDate)
		switch {
		case s == "":
			r.AvailableDate = time.Time{}
		default:
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				if t, err = time.Parse(time.DateOnly, s); err != nil {
					return fmt.Errorf("availableDate: %w", err)
				}
			}
			r.AvailableDate = t
		}
	}
	return nil
}

// Normalize trims text fields.
func (r *Rental) Normalize() {
	for _, s := range []*string{&r.Name, &r.Brand, &r.Model, &r.Engine, &r.Fuel, &r.TopSpeed, &r.Color, &r.Description, &r.Image} {
		*s = strings.TrimSpace(*s)
	}
}

// Validate checks the rental against its schema.
func (r *Rental) Validate() error {
	r.Normalize()
	return Validate(r)
}

// RentalStatsOverview holds price statistics over all rentals.
type RentalStatsOverview struct {
	TotalRentals int64   `json:"totalRentals"`
	AveragePrice float64 `json:"averagePrice"`
	MinPrice     float64 `json:"minPrice"`
	MaxPrice     float64 `json:"maxPrice"`
}

// MonthKey identifies a calendar month in an aggregate.
type MonthKey struct {
	Year  int `bson:"year" json:"year"`
	Month int `bson:"month" json:"month"`
}

// MonthlyCount is the number of rentals added in one month.
type MonthlyCount struct {
	ID    MonthKey `bson:"_id" json:"_id"`
	Count int64    `bson:"count" json:"count"`
}

// RentalStats is the payload of the rental statistics endpoint.
type RentalStats struct {
	Overview     RentalStatsOverview `json:"overview"`
	BrandStats   []GroupCount        `json:"brandStats"`
	MonthlyStats []MonthlyCount      `json:"monthlyStats"`
}
