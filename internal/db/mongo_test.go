package db

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/car-showroom/internal/config"
	"github.com/ukydev/car-showroom/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// testStore connects to the database named by MONGO_URI and skips the test
// when none is reachable. The test database is dropped before and after.
func testStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" || uri == "uri" {
		t.Skip("MONGO_URI not set or invalid, skipping integration test")
	}
	cfg := config.MongoConfig{URI: uri, Database: "test_showroom", ConnectTimeout: 5 * time.Second}
	client, err := ConnectMongo(context.Background(), cfg)
	if err != nil {
		t.Skipf("failed to connect: %v, skipping integration test", err)
	}
	store := NewStore(client, cfg)
	ctx := context.Background()
	require.NoError(t, store.Database.Drop(ctx))
	require.NoError(t, store.EnsureIndexes(ctx))
	t.Cleanup(func() {
		_ = store.Database.Drop(context.Background())
		_ = store.Close(context.Background())
	})
	return store
}

func TestConnectMongo_BadURI(t *testing.T) {
	cfg := config.MongoConfig{URI: "mongodb://bad:uri", ConnectTimeout: time.Second}
	client, err := ConnectMongo(context.Background(), cfg)
	if err == nil {
		t.Error("expected error for bad URI, got nil")
	}
	if client != nil {
		t.Error("expected nil client on error")
	}
}

func TestNilCollection(t *testing.T) {
	ctx := context.Background()

	err := (&MongoCarCollection{}).InsertCar(ctx, &models.Car{})
	assert.ErrorIs(t, err, ErrNilCollection)

	_, err = (&MongoBrandCollection{}).FindBrands(ctx, BrandFilter{})
	assert.ErrorIs(t, err, ErrNilCollection)

	err = (&MongoBannerCollection{}).ReorderBanners(ctx, nil)
	assert.ErrorIs(t, err, ErrNilCollection)

	_, err = (&MongoRentalCollection{}).RentalStats(ctx)
	assert.ErrorIs(t, err, ErrNilCollection)

	_, err = (&MongoUserCollection{}).FindUserByEmail(ctx, "a@b.c")
	assert.ErrorIs(t, err, ErrNilCollection)
}

func TestObjectID_MalformedIsNotFound(t *testing.T) {
	_, err := objectID("not-an-id")
	assert.True(t, IsNotFound(err))

	oid := primitive.NewObjectID()
	got, err := objectID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, got)
}

func TestNotFoundAndDuplicateTranslation(t *testing.T) {
	assert.ErrorIs(t, notFound(mongo.ErrNoDocuments), ErrNotFound)
	other := errors.New("boom")
	assert.Equal(t, other, notFound(other))

	dupErr := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.True(t, IsDuplicate(duplicate(dupErr)))
	assert.False(t, IsDuplicate(duplicate(other)))
	assert.NoError(t, duplicate(nil))
}

func TestExactNameRegex(t *testing.T) {
	re := exactNameRegex("Mercedes-Benz (AMG)")
	assert.Equal(t, `^Mercedes-Benz \(AMG\)$`, re.Pattern)
	assert.Equal(t, "i", re.Options)
}

func TestSetFields_OmitsKeys(t *testing.T) {
	brand := models.Brand{ID: primitive.NewObjectID(), Name: "Toyota", CarCount: 7}
	fields, err := setFields(brand, "_id", "carCount", "createdAt")
	require.NoError(t, err)

	assert.Equal(t, "Toyota", fields["name"])
	assert.NotContains(t, fields, "_id")
	assert.NotContains(t, fields, "carCount")
	assert.NotContains(t, fields, "createdAt")
	assert.Contains(t, fields, "updatedAt")
}

func TestListOptions(t *testing.T) {
	opts := ListOptions{}.Normalize()
	assert.Equal(t, 1, opts.Page)
	assert.Equal(t, DefaultPageSize, opts.Limit)
	assert.Equal(t, int64(0), opts.Skip())

	opts = ListOptions{Page: 3, Limit: 500}.Normalize()
	assert.Equal(t, MaxPageSize, opts.Limit)
	assert.Equal(t, int64(200), opts.Skip())

	assert.Equal(t, int64(3), TotalPages(21, 10))
	assert.Equal(t, int64(2), TotalPages(20, 10))
	assert.Equal(t, int64(0), TotalPages(0, 10))
	assert.Equal(t, int64(0), TotalPages(5, 0))
}

func TestCarQuery(t *testing.T) {
	minPrice, maxPrice := 10000.0, 50000.0
	featured := true
	query := carQuery(CarFilter{
		Search:       "hybrid",
		Brand:        "toy",
		Category:     "SUV",
		MinPrice:     &minPrice,
		MaxPrice:     &maxPrice,
		Year:         2022,
		FuelType:     "Hybrid",
		Transmission: "Automatic",
		Status:       models.CarAvailable,
		Featured:     &featured,
	})

	assert.Equal(t, bson.M{"$search": "hybrid"}, query["$text"])
	assert.Equal(t, primitive.Regex{Pattern: "toy", Options: "i"}, query["brand"])
	assert.Equal(t, "SUV", query["category"])
	assert.Equal(t, bson.M{"$gte": 10000.0, "$lte": 50000.0}, query["price"])
	assert.Equal(t, 2022, query["year"])
	assert.Equal(t, "Hybrid", query["specifications.fuelType"])
	assert.Equal(t, "Automatic", query["specifications.transmission"])
	assert.Equal(t, models.CarAvailable, query["status"])
	assert.Equal(t, true, query["isFeatured"])

	assert.Empty(t, carQuery(CarFilter{}))

	onlyMin := carQuery(CarFilter{MinPrice: &minPrice})
	assert.Equal(t, bson.M{"$gte": 10000.0}, onlyMin["price"])
}

func TestCarSort(t *testing.T) {
	tests := map[string]bson.D{
		"price-asc":  {{Key: "price", Value: 1}},
		"price-desc": {{Key: "price", Value: -1}},
		"year-asc":   {{Key: "year", Value: 1}},
		"year-desc":  {{Key: "year", Value: -1}},
		"name":       {{Key: "name", Value: 1}},
		"":           {{Key: "createdAt", Value: -1}},
		"bogus":      {{Key: "createdAt", Value: -1}},
	}
	for sort, want := range tests {
		assert.Equal(t, want, carSort(sort), sort)
	}
}

func TestRentalQueryAndSort(t *testing.T) {
	maxPrice := 100.0
	query := rentalQuery(RentalFilter{Search: "tesla", Brand: "Tesla", MaxPrice: &maxPrice})
	assert.Equal(t, "Tesla", query["brand"])
	assert.Len(t, query["$or"], 4)
	assert.Equal(t, bson.M{"$lte": 100.0}, query["pricePerDay"])

	assert.Equal(t, bson.D{{Key: "pricePerDay", Value: 1}}, rentalSort("pricePerDay", "asc"))
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, rentalSort("$where", "desc"))
}

func TestBrandQuery(t *testing.T) {
	active := false
	query := brandQuery(BrandFilter{Active: &active, Search: "japan"})
	assert.Equal(t, false, query["isActive"])
	assert.Equal(t, bson.M{"$search": "japan"}, query["$text"])
}
