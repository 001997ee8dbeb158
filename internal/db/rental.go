package db

import (
	"context"

	"github.com/ukydev/car-showroom/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRentalCollection implements RentalCollection for MongoDB.
type MongoRentalCollection struct {
	Collection *mongo.Collection
}

var rentalSortFields = map[string]bool{
	"createdAt":     true,
	"pricePerDay":   true,
	"name":          true,
	"brand":         true,
	"availableDate": true,
}

func rentalQuery(filter RentalFilter) bson.M {
	query := bson.M{}
	if filter.Brand != "" {
		query["brand"] = filter.Brand
	}
	if filter.Search != "" {
		pattern := containsRegex(filter.Search)
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"brand": pattern},
			bson.M{"model": pattern},
			bson.M{"description": pattern},
		}
	}
	if filter.MinPrice != nil || filter.MaxPrice != nil {
		price := bson.M{}
		if filter.MinPrice != nil {
			price["$gte"] = *filter.MinPrice
		}
		if filter.MaxPrice != nil {
			price["$lte"] = *filter.MaxPrice
		}
		query["pricePerDay"] = price
	}
	return query
}

// rentalSort sorts on a known field, newest first unless order is "asc".
func rentalSort(field, order string) bson.D {
	if !rentalSortFields[field] {
		field = "createdAt"
	}
	direction := -1
	if order == "asc" {
		direction = 1
	}
	return bson.D{{Key: field, Value: direction}}
}

func (c *MongoRentalCollection) InsertRental(ctx context.Context, rental *models.Rental) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	rental.ID = primitive.NewObjectID()
	rental.CreatedAt = now()
	rental.UpdatedAt = rental.CreatedAt
	_, err := c.Collection.InsertOne(ctx, rental)
	return err
}

func (c *MongoRentalCollection) FindRentals(ctx context.Context, filter RentalFilter, opts ListOptions) ([]models.Rental, int64, error) {
	if c.Collection == nil {
		return nil, 0, ErrNilCollection
	}
	opts = opts.Normalize()
	query := rentalQuery(filter)

	findOpts := options.Find().
		SetSort(rentalSort(opts.Sort, opts.Order)).
		SetSkip(opts.Skip()).
		SetLimit(int64(opts.Limit))
	cursor, err := c.Collection.Find(ctx, query, findOpts)
	if err != nil {
		return nil, 0, err
	}
	rentals := []models.Rental{}
	if err := cursor.All(ctx, &rentals); err != nil {
		return nil, 0, err
	}
	total, err := c.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return rentals, total, nil
}

func (c *MongoRentalCollection) FindRentalByID(ctx context.Context, id string) (*models.Rental, error) {
	if c.Collection == nil {
		return nil, ErrNilCollection
	}
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var rental models.Rental
	if err := c.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&rental); err != nil {
		return nil, notFound(err)
	}
	return &rental, nil
}

func (c *MongoRentalCollection) UpdateRental(ctx context.Context, rental *models.Rental) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	rental.UpdatedAt = now()
	fields, err := setFields(rental, "_id", "createdAt")
	if err != nil {
		return err
	}
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": rental.ID}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoRentalCollection) DeleteRental(ctx context.Context, id string) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RentalStats returns price statistics, the five most common brands and the
// number of rentals added in each of the last twelve months.
func (c *MongoRentalCollection) RentalStats(ctx context.Context) (*models.RentalStats, error) {
	if c.Collection == nil {
		return nil, ErrNilCollection
	}
	stats := &models.RentalStats{BrandStats: []models.GroupCount{}, MonthlyStats: []models.MonthlyCount{}}

	cursor, err := c.Collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":          nil,
			"totalRentals": bson.M{"$sum": 1},
			"averagePrice": bson.M{"$avg": "$pricePerDay"},
			"minPrice":     bson.M{"$min": "$pricePerDay"},
			"maxPrice":     bson.M{"$max": "$pricePerDay"},
		}}},
	})
	if err != nil {
		return nil, err
	}
	var overview []struct {
		TotalRentals int64   `bson:"totalRentals"`
		AveragePrice float64 `bson:"averagePrice"`
		MinPrice     float64 `bson:"minPrice"`
		MaxPrice     float64 `bson:"maxPrice"`
	}
	if err := cursor.All(ctx, &overview); err != nil {
		return nil, err
	}
	if len(overview) > 0 {
		stats.Overview = models.RentalStatsOverview(overview[0])
	}

	if stats.BrandStats, err = groupCounts(ctx, c.Collection, "$brand", 5); err != nil {
		return nil, err
	}

	cursor, err = c.Collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"year":  bson.M{"$year": "$createdAt"},
				"month": bson.M{"$month": "$createdAt"},
			},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.year", Value: -1}, {Key: "_id.month", Value: -1}}}},
		{{Key: "$limit", Value: 12}},
	})
	if err != nil {
		return nil, err
	}
	if err := cursor.All(ctx, &stats.MonthlyStats); err != nil {
		return nil, err
	}
	return stats, nil
}
