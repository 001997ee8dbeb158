package db

import (
	"context"

	"github.com/ukydev/car-showroom/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCarCollection implements CarCollection for MongoDB.
type MongoCarCollection struct {
	Collection *mongo.Collection
}

// carQuery builds the listing filter from the query string filters.
func carQuery(filter CarFilter) bson.M {
	query := bson.M{}
	if filter.Search != "" {
		query["$text"] = bson.M{"$search": filter.Search}
	}
	if filter.Brand != "" {
		query["brand"] = containsRegex(filter.Brand)
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.MinPrice != nil || filter.MaxPrice != nil {
		price := bson.M{}
		if filter.MinPrice != nil {
			price["$gte"] = *filter.MinPrice
		}
		if filter.MaxPrice != nil {
			price["$lte"] = *filter.MaxPrice
		}
		query["price"] = price
	}
	if filter.Year != 0 {
		query["year"] = filter.Year
	}
	if filter.FuelType != "" {
		query["specifications.fuelType"] = filter.FuelType
	}
	if filter.Transmission != "" {
		query["specifications.transmission"] = filter.Transmission
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Featured != nil {
		query["isFeatured"] = *filter.Featured
	}
	return query
}

// carSort maps the sort keys accepted by the listing to a Mongo sort.
func carSort(sort string) bson.D {
	switch sort {
	case "price-asc":
		return bson.D{{Key: "price", Value: 1}}
	case "price-desc":
		return bson.D{{Key: "price", Value: -1}}
	case "year-asc":
		return bson.D{{Key: "year", Value: 1}}
	case "year-desc":
		return bson.D{{Key: "year", Value: -1}}
	case "name":
		return bson.D{{Key: "name", Value: 1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}}
	}
}

func (c *MongoCarCollection) InsertCar(ctx context.Context, car *models.Car) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	car.ID = primitive.NewObjectID()
	car.CreatedAt = now()
	car.UpdatedAt = car.CreatedAt
	_, err := c.Collection.InsertOne(ctx, car)
	return err
}

// FindCars returns one page of matching cars and the total match count.
func (c *MongoCarCollection) FindCars(ctx context.Context, filter CarFilter, opts ListOptions) ([]models.Car, int64, error) {
	if c.Collection == nil {
		return nil, 0, ErrNilCollection
	}
	opts = opts.Normalize()
	query := carQuery(filter)

	findOpts := options.Find().
		SetSort(carSort(opts.Sort)).
		SetSkip(opts.Skip()).
		SetLimit(int64(opts.Limit))
	cursor, err := c.Collection.Find(ctx, query, findOpts)
	if err != nil {
		return nil, 0, err
	}
	cars := []models.Car{}
	if err := cursor.All(ctx, &cars); err != nil {
		return nil, 0, err
	}

	total, err := c.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return cars, total, nil
}

// FindFeaturedCars returns the newest featured cars that are still available.
func (c *MongoCarCollection) FindFeaturedCars(ctx context.Context, limit int) ([]models.Car, error) {
	if c.Collection == nil {
		return nil, ErrNilCollection
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(int64(limit))
	cursor, err := c.Collection.Find(ctx, bson.M{"isFeatured": true, "status": models.CarAvailable}, opts)
	if err != nil {
		return nil, err
	}
	cars := []models.Car{}
	if err := cursor.All(ctx, &cars); err != nil {
		return nil, err
	}
	return cars, nil
}

func (c *MongoCarCollection) FindCarsByBrand(ctx context.Context, brand string) ([]models.Car, error) {
	if c.Collection == nil {
		return nil, ErrNilCollection
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := c.Collection.Find(ctx, bson.M{"brand": exactNameRegex(brand)}, opts)
	if err != nil {
		return nil, err
	}
	cars := []models.Car{}
	if err := cursor.All(ctx, &cars); err != nil {
		return nil, err
	}
	return cars, nil
}

func (c *MongoCarCollection) FindCarByID(ctx context.Context, id string) (*models.Car, error) {
	if c.Collection == nil {
		return nil, ErrNilCollection
	}
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var car models.Car
	if err := c.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&car); err != nil {
		return nil, notFound(err)
	}
	return &car, nil
}

func (c *MongoCarCollection) IncrementViews(ctx context.Context, id string) (*models.Car, error) {
	return c.findOneAndUpdate(ctx, id, bson.M{"$inc": bson.M{"views": 1}})
}

// UpdateCar writes the editable fields. views is only changed by
// IncrementViews.
func (c *MongoCarCollection) UpdateCar(ctx context.Context, car *models.Car) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	car.UpdatedAt = now()
	fields, err := setFields(car, "_id", "views", "createdAt")
	if err != nil {
		return err
	}
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": car.ID}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoCarCollection) SetCarStatus(ctx context.Context, id string, status models.CarStatus) (*models.Car, error) {
	return c.findOneAndUpdate(ctx, id, bson.M{"$set": bson.M{"status": status, "updatedAt": now()}})
}

// ToggleCarFeatured flips isFeatured in a single pipeline update.
func (c *MongoCarCollection) ToggleCarFeatured(ctx context.Context, id string) (*models.Car, error) {
	return c.findOneAndUpdate(ctx, id, bson.A{
		bson.M{"$set": bson.M{
			"isFeatured": bson.M{"$not": bson.A{"$isFeatured"}},
			"updatedAt":  now(),
		}},
	})
}

func (c *MongoCarCollection) findOneAndUpdate(ctx context.Context, id string, update interface{}) (*models.Car, error) {
	if c.Collection == nil {
		return nil, ErrNilCollection
	}
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var car models.Car
	err = c.Collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&car)
	if err != nil {
		return nil, notFound(err)
	}
	return &car, nil
}

func (c *MongoCarCollection) DeleteCar(ctx context.Context, id primitive.ObjectID) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoCarCollection) CountCarsByBrand(ctx context.Context, name string) (int64, error) {
	if c.Collection == nil {
		return 0, ErrNilCollection
	}
	return c.Collection.CountDocuments(ctx, bson.M{"brand": exactNameRegex(name)})
}

func (c *MongoCarCollection) RenameBrand(ctx context.Context, from, to string) (int64, error) {
	if c.Collection == nil {
		return 0, ErrNilCollection
	}
	result, err := c.Collection.UpdateMany(ctx,
		bson.M{"brand": exactNameRegex(from)},
		bson.M{"$set": bson.M{"brand": to, "updatedAt": now()}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// CarStats builds the admin dashboard counters.
func (c *MongoCarCollection) CarStats(ctx context.Context) (*models.CarStats, error) {
	if c.Collection == nil {
		return nil, ErrNilCollection
	}
	stats := &models.CarStats{}
	counts := []struct {
		filter bson.M
		dst    *int64
	}{
		{bson.M{}, &stats.Overview.TotalCars},
		{bson.M{"status": models.CarAvailable}, &stats.Overview.AvailableCars},
		{bson.M{"status": models.CarSold}, &stats.Overview.SoldCars},
		{bson.M{"status": models.CarReserved}, &stats.Overview.ReservedCars},
		{bson.M{"isFeatured": true}, &stats.Overview.FeaturedCars},
	}
	for _, cnt := range counts {
		n, err := c.Collection.CountDocuments(ctx, cnt.filter)
		if err != nil {
			return nil, err
		}
		*cnt.dst = n
	}

	var err error
	if stats.CarsByStatus, err = groupCounts(ctx, c.Collection, "$status", 0); err != nil {
		return nil, err
	}
	if stats.CarsByCategory, err = groupCounts(ctx, c.Collection, "$category", 0); err != nil {
		return nil, err
	}
	if stats.CarsByBrand, err = groupCounts(ctx, c.Collection, "$brand", 10); err != nil {
		return nil, err
	}
	return stats, nil
}

// groupCounts counts documents per value of field, largest groups first.
// limit <= 0 returns every group.
func groupCounts(ctx context.Context, coll *mongo.Collection, field string, limit int64) ([]models.GroupCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": field, "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	groups := []models.GroupCount{}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}
