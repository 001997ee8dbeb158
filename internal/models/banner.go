package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Banner is a hero slide on the public site. Order sequences display.
type Banner struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title           string             `bson:"title" json:"title" validate:"required,max=100"`
	Subtitle        string             `bson:"subtitle" json:"subtitle" validate:"max=200"`
	Description     string             `bson:"description" json:"description" validate:"max=500"`
	Image           string             `bson:"image" json:"image" validate:"required"`
	ButtonText      string             `bson:"buttonText" json:"buttonText" validate:"max=50"`
	ButtonLink      string             `bson:"buttonLink" json:"buttonLink"`
	IsActive        bool               `bson:"isActive" json:"isActive"`
	Order           int                `bson:"order" json:"order"`
	BackgroundColor string             `bson:"backgroundColor" json:"backgroundColor"`
	TextColor       string             `bson:"textColor" json:"textColor"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewBanner returns a banner with the schema defaults applied.
func NewBanner() Banner {
	return Banner{
		ButtonText:      "Learn More",
		ButtonLink:      "/cars",
		IsActive:        true,
		BackgroundColor: "#f8f9fa",
		TextColor:       "#333333",
	}
}

// Normalize trims text fields.
func (b *Banner) Normalize() {
	b.Title = strings.TrimSpace(b.Title)
	b.Subtitle = strings.TrimSpace(b.Subtitle)
	b.Description = strings.TrimSpace(b.Description)
}

// Validate checks the banner against its schema.
func (b *Banner) Validate() error {
	b.Normalize()
	return Validate(b)
}

// ReorderRequest accepts the full ordered list of banner ids. Items is the
// older {id, order} form.
type ReorderRequest struct {
	OrderedIDs []string          `json:"orderedIds"`
	Items      []BannerOrderItem `json:"banners"`
}

type BannerOrderItem struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}

// Positions resolves the request into id -> order assignments.
func (r ReorderRequest) Positions() []BannerOrderItem {
	if len(r.OrderedIDs) > 0 {
		items := make([]BannerOrderItem, len(r.OrderedIDs))
		for i, id := range r.OrderedIDs {
			items[i] = BannerOrderItem{ID: id, Order: i}
		}
		return items
	}
	return r.Items
}
