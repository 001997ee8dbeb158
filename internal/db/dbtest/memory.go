// Package dbtest provides in-memory collections for tests that need the
// behavior of the Mongo collections without a database.
package dbtest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ukydev/car-showroom/internal/db"
	"github.com/ukydev/car-showroom/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds one in-memory instance of every collection.
type Store struct {
	Users   *Users
	Brands  *Brands
	Cars    *Cars
	Banners *Banners
	Rentals *Rentals
}

func NewStore() *Store {
	return &Store{
		Users:   &Users{docs: map[primitive.ObjectID]models.User{}},
		Brands:  &Brands{docs: map[primitive.ObjectID]models.Brand{}},
		Cars:    &Cars{docs: map[primitive.ObjectID]models.Car{}},
		Banners: &Banners{docs: map[primitive.ObjectID]models.Banner{}},
		Rentals: &Rentals{docs: map[primitive.ObjectID]models.Rental{}},
	}
}

// WithTransaction runs fn directly; the memory store has no rollback.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, db.ErrNotFound
	}
	return oid, nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func page[T any](items []T, opts db.ListOptions) []T {
	start := int(opts.Skip())
	if start >= len(items) {
		return []T{}
	}
	end := start + opts.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// Users is an in-memory db.UserCollection.
type Users struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.User
}

func (c *Users) InsertUser(_ context.Context, user *models.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range c.docs {
		if u.Email == user.Email {
			return db.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	c.docs[user.ID] = *user
	return nil
}

func (c *Users) FindUserByID(_ context.Context, id string) (*models.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.docs[oid]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &u, nil
}

func (c *Users) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range c.docs {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, db.ErrNotFound
}

func (c *Users) UpdateUser(_ context.Context, user *models.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, ok := c.docs[user.ID]
	if !ok {
		return db.ErrNotFound
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for id, u := range c.docs {
		if id != user.ID && u.Email == user.Email {
			return db.ErrDuplicate
		}
	}
	user.CreatedAt = current.CreatedAt
	user.UpdatedAt = time.Now()
	c.docs[user.ID] = *user
	return nil
}

func (c *Users) UpdateLastLogin(_ context.Context, id primitive.ObjectID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.docs[id]
	if !ok {
		return db.ErrNotFound
	}
	ts := time.Now()
	u.LastLogin = &ts
	c.docs[id] = u
	return nil
}

// Brands is an in-memory db.BrandCollection.
type Brands struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.Brand
}

func (c *Brands) InsertBrand(_ context.Context, brand *models.Brand) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range c.docs {
		if strings.EqualFold(b.Name, brand.Name) {
			return db.ErrDuplicate
		}
	}
	brand.ID = primitive.NewObjectID()
	brand.CreatedAt = time.Now()
	brand.UpdatedAt = brand.CreatedAt
	c.docs[brand.ID] = *brand
	return nil
}

func (c *Brands) FindBrands(_ context.Context, filter db.BrandFilter) ([]models.Brand, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	brands := []models.Brand{}
	for _, b := range c.docs {
		if filter.Active != nil && b.IsActive != *filter.Active {
			continue
		}
		if filter.Search != "" && !containsFold(b.Name, filter.Search) && !containsFold(b.Description, filter.Search) {
			continue
		}
		brands = append(brands, b)
	}
	sort.Slice(brands, func(i, j int) bool {
		if brands[i].Order != brands[j].Order {
			return brands[i].Order < brands[j].Order
		}
		return brands[i].Name < brands[j].Name
	})
	return brands, nil
}

func (c *Brands) FindBrandByID(_ context.Context, id string) (*models.Brand, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.docs[oid]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &b, nil
}

func (c *Brands) FindBrandByName(_ context.Context, name string) (*models.Brand, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range c.docs {
		if strings.EqualFold(b.Name, name) {
			return &b, nil
		}
	}
	return nil, db.ErrNotFound
}

func (c *Brands) BrandNameExists(_ context.Context, name string, excludeID primitive.ObjectID) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, b := range c.docs {
		if id != excludeID && strings.EqualFold(b.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (c *Brands) UpdateBrand(_ context.Context, brand *models.Brand) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, ok := c.docs[brand.ID]
	if !ok {
		return db.ErrNotFound
	}
	brand.CarCount = current.CarCount
	brand.CreatedAt = current.CreatedAt
	brand.UpdatedAt = time.Now()
	c.docs[brand.ID] = *brand
	return nil
}

func (c *Brands) SetBrandStatus(_ context.Context, id string, active bool) (*models.Brand, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.docs[oid]
	if !ok {
		return nil, db.ErrNotFound
	}
	b.IsActive = active
	c.docs[oid] = b
	return &b, nil
}

func (c *Brands) DeleteBrand(_ context.Context, id primitive.ObjectID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.docs[id]; !ok {
		return db.ErrNotFound
	}
	delete(c.docs, id)
	return nil
}

func (c *Brands) IncrementCarCount(_ context.Context, id primitive.ObjectID, delta int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.docs[id]
	if !ok {
		if delta > 0 {
			return db.ErrNotFound
		}
		return nil
	}
	if b.CarCount+delta < 0 {
		return nil
	}
	b.CarCount += delta
	c.docs[id] = b
	return nil
}

func (c *Brands) SetCarCount(_ context.Context, id primitive.ObjectID, count int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.docs[id]
	if !ok {
		return db.ErrNotFound
	}
	b.CarCount = count
	c.docs[id] = b
	return nil
}

// Count returns the stored carCount of the named brand, or -1 if absent.
func (c *Brands) Count(name string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range c.docs {
		if strings.EqualFold(b.Name, name) {
			return b.CarCount
		}
	}
	return -1
}

// Cars is an in-memory db.CarCollection.
type Cars struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.Car
}

func (c *Cars) InsertCar(_ context.Context, car *models.Car) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	car.ID = primitive.NewObjectID()
	car.CreatedAt = time.Now()
	car.UpdatedAt = car.CreatedAt
	c.docs[car.ID] = *car
	return nil
}

func matchesCar(car models.Car, f db.CarFilter) bool {
	switch {
	case f.Search != "" && !containsFold(car.Name+" "+car.Brand+" "+car.Model+" "+car.Description, f.Search):
		return false
	case f.Brand != "" && !containsFold(car.Brand, f.Brand):
		return false
	case f.Category != "" && car.Category != f.Category:
		return false
	case f.MinPrice != nil && car.Price < *f.MinPrice:
		return false
	case f.MaxPrice != nil && car.Price > *f.MaxPrice:
		return false
	case f.Year != 0 && car.Year != f.Year:
		return false
	case f.FuelType != "" && car.Specifications.FuelType != f.FuelType:
		return false
	case f.Transmission != "" && car.Specifications.Transmission != f.Transmission:
		return false
	case f.Status != "" && car.Status != f.Status:
		return false
	case f.Featured != nil && car.IsFeatured != *f.Featured:
		return false
	}
	return true
}

func sortCars(cars []models.Car, key string) {
	sort.SliceStable(cars, func(i, j int) bool {
		a, b := cars[i], cars[j]
		switch key {
		case "price-asc":
			return a.Price < b.Price
		case "price-desc":
			return a.Price > b.Price
		case "year-asc":
			return a.Year < b.Year
		case "year-desc":
			return a.Year > b.Year
		case "name":
			return a.Name < b.Name
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
}

func (c *Cars) all() []models.Car {
	cars := make([]models.Car, 0, len(c.docs))
	for _, car := range c.docs {
		cars = append(cars, car)
	}
	return cars
}

func (c *Cars) FindCars(_ context.Context, filter db.CarFilter, opts db.ListOptions) ([]models.Car, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	opts = opts.Normalize()
	matched := []models.Car{}
	for _, car := range c.all() {
		if matchesCar(car, filter) {
			matched = append(matched, car)
		}
	}
	sortCars(matched, opts.Sort)
	return page(matched, opts), int64(len(matched)), nil
}

func (c *Cars) FindFeaturedCars(_ context.Context, limit int) ([]models.Car, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	featured := []models.Car{}
	for _, car := range c.all() {
		if car.IsFeatured && car.Status == models.CarAvailable {
			featured = append(featured, car)
		}
	}
	sortCars(featured, "")
	if limit > 0 && len(featured) > limit {
		featured = featured[:limit]
	}
	return featured, nil
}

func (c *Cars) FindCarsByBrand(_ context.Context, brand string) ([]models.Car, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cars := []models.Car{}
	for _, car := range c.all() {
		if strings.EqualFold(car.Brand, brand) {
			cars = append(cars, car)
		}
	}
	sortCars(cars, "")
	return cars, nil
}

func (c *Cars) FindCarByID(_ context.Context, id string) (*models.Car, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	car, ok := c.docs[oid]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &car, nil
}

func (c *Cars) modify(id string, fn func(*models.Car)) (*models.Car, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	car, ok := c.docs[oid]
	if !ok {
		return nil, db.ErrNotFound
	}
	fn(&car)
	c.docs[oid] = car
	return &car, nil
}

func (c *Cars) IncrementViews(_ context.Context, id string) (*models.Car, error) {
	return c.modify(id, func(car *models.Car) { car.Views++ })
}

func (c *Cars) UpdateCar(_ context.Context, car *models.Car) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, ok := c.docs[car.ID]
	if !ok {
		return db.ErrNotFound
	}
	car.Views = current.Views
	car.CreatedAt = current.CreatedAt
	car.UpdatedAt = time.Now()
	c.docs[car.ID] = *car
	return nil
}

func (c *Cars) SetCarStatus(_ context.Context, id string, status models.CarStatus) (*models.Car, error) {
	return c.modify(id, func(car *models.Car) { car.Status = status })
}

func (c *Cars) ToggleCarFeatured(_ context.Context, id string) (*models.Car, error) {
	return c.modify(id, func(car *models.Car) { car.IsFeatured = !car.IsFeatured })
}

func (c *Cars) DeleteCar(_ context.Context, id primitive.ObjectID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.docs[id]; !ok {
		return db.ErrNotFound
	}
	delete(c.docs, id)
	return nil
}

func (c *Cars) CountCarsByBrand(_ context.Context, name string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, car := range c.docs {
		if strings.EqualFold(car.Brand, name) {
			n++
		}
	}
	return n, nil
}

func (c *Cars) RenameBrand(_ context.Context, from, to string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for id, car := range c.docs {
		if strings.EqualFold(car.Brand, from) {
			car.Brand = to
			c.docs[id] = car
			n++
		}
	}
	return n, nil
}

func (c *Cars) CarStats(_ context.Context) (*models.CarStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := &models.CarStats{}
	byStatus := map[string]int64{}
	byCategory := map[string]int64{}
	byBrand := map[string]int64{}
	for _, car := range c.docs {
		stats.Overview.TotalCars++
		switch car.Status {
		case models.CarAvailable:
			stats.Overview.AvailableCars++
		case models.CarSold:
			stats.Overview.SoldCars++
		case models.CarReserved:
			stats.Overview.ReservedCars++
		}
		if car.IsFeatured {
			stats.Overview.FeaturedCars++
		}
		byStatus[string(car.Status)]++
		byCategory[car.Category]++
		byBrand[car.Brand]++
	}
	stats.CarsByStatus = groups(byStatus, 0)
	stats.CarsByCategory = groups(byCategory, 0)
	stats.CarsByBrand = groups(byBrand, 10)
	return stats, nil
}

func groups(counts map[string]int64, limit int) []models.GroupCount {
	out := make([]models.GroupCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, models.GroupCount{ID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Banners is an in-memory db.BannerCollection.
type Banners struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.Banner
}

func (c *Banners) InsertBanner(_ context.Context, banner *models.Banner) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	banner.ID = primitive.NewObjectID()
	banner.CreatedAt = time.Now()
	banner.UpdatedAt = banner.CreatedAt
	c.docs[banner.ID] = *banner
	return nil
}

func (c *Banners) FindBanners(_ context.Context, active *bool) ([]models.Banner, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	banners := []models.Banner{}
	for _, b := range c.docs {
		if active != nil && b.IsActive != *active {
			continue
		}
		banners = append(banners, b)
	}
	sort.Slice(banners, func(i, j int) bool {
		if banners[i].Order != banners[j].Order {
			return banners[i].Order < banners[j].Order
		}
		return banners[i].CreatedAt.After(banners[j].CreatedAt)
	})
	return banners, nil
}

func (c *Banners) FindBannerByID(_ context.Context, id string) (*models.Banner, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.docs[oid]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &b, nil
}

func (c *Banners) UpdateBanner(_ context.Context, banner *models.Banner) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, ok := c.docs[banner.ID]
	if !ok {
		return db.ErrNotFound
	}
	banner.CreatedAt = current.CreatedAt
	banner.UpdatedAt = time.Now()
	c.docs[banner.ID] = *banner
	return nil
}

func (c *Banners) SetBannerStatus(_ context.Context, id string, active bool) (*models.Banner, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.docs[oid]
	if !ok {
		return nil, db.ErrNotFound
	}
	b.IsActive = active
	c.docs[oid] = b
	return &b, nil
}

func (c *Banners) DeleteBanner(_ context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.docs[oid]; !ok {
		return db.ErrNotFound
	}
	delete(c.docs, oid)
	return nil
}

func (c *Banners) ReorderBanners(_ context.Context, items []models.BannerOrderItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range items {
		oid, err := parseID(item.ID)
		if err != nil {
			return err
		}
		if b, ok := c.docs[oid]; ok {
			b.Order = item.Order
			c.docs[oid] = b
		}
	}
	return nil
}

// Rentals is an in-memory db.RentalCollection.
type Rentals struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.Rental
}

func (c *Rentals) InsertRental(_ context.Context, rental *models.Rental) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	rental.ID = primitive.NewObjectID()
	rental.CreatedAt = time.Now()
	rental.UpdatedAt = rental.CreatedAt
	c.docs[rental.ID] = *rental
	return nil
}

func (c *Rentals) FindRentals(_ context.Context, filter db.RentalFilter, opts db.ListOptions) ([]models.Rental, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	opts = opts.Normalize()
	matched := []models.Rental{}
	for _, r := range c.docs {
		if filter.Brand != "" && r.Brand != filter.Brand {
			continue
		}
		if filter.Search != "" && !containsFold(r.Name+" "+r.Brand+" "+r.Model+" "+r.Description, filter.Search) {
			continue
		}
		if filter.MinPrice != nil && r.PricePerDay < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && r.PricePerDay > *filter.MaxPrice {
			continue
		}
		matched = append(matched, r)
	}
	sort.Slice(matched, func(i, j int) bool {
		if opts.Sort == "pricePerDay" {
			if opts.Order == "asc" {
				return matched[i].PricePerDay < matched[j].PricePerDay
			}
			return matched[i].PricePerDay > matched[j].PricePerDay
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return page(matched, opts), int64(len(matched)), nil
}

func (c *Rentals) FindRentalByID(_ context.Context, id string) (*models.Rental, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.docs[oid]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &r, nil
}

func (c *Rentals) UpdateRental(_ context.Context, rental *models.Rental) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, ok := c.docs[rental.ID]
	if !ok {
		return db.ErrNotFound
	}
	rental.CreatedAt = current.CreatedAt
	rental.UpdatedAt = time.Now()
	c.docs[rental.ID] = *rental
	return nil
}

func (c *Rentals) DeleteRental(_ context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.docs[oid]; !ok {
		return db.ErrNotFound
	}
	delete(c.docs, oid)
	return nil
}

func (c *Rentals) RentalStats(_ context.Context) (*models.RentalStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := &models.RentalStats{MonthlyStats: []models.MonthlyCount{}}
	byBrand := map[string]int64{}
	months := map[models.MonthKey]int64{}
	var sum float64
	for _, r := range c.docs {
		o := &stats.Overview
		if o.TotalRentals == 0 || r.PricePerDay < o.MinPrice {
			o.MinPrice = r.PricePerDay
		}
		if r.PricePerDay > o.MaxPrice {
			o.MaxPrice = r.PricePerDay
		}
		o.TotalRentals++
		sum += r.PricePerDay
		byBrand[r.Brand]++
		months[models.MonthKey{Year: r.CreatedAt.Year(), Month: int(r.CreatedAt.Month())}]++
	}
	if stats.Overview.TotalRentals > 0 {
		stats.Overview.AveragePrice = sum / float64(stats.Overview.TotalRentals)
	}
	stats.BrandStats = groups(byBrand, 5)
	for key, n := range months {
		stats.MonthlyStats = append(stats.MonthlyStats, models.MonthlyCount{ID: key, Count: n})
	}
	return stats, nil
}

var (
	_ db.UserCollection   = (*Users)(nil)
	_ db.BrandCollection  = (*Brands)(nil)
	_ db.CarCollection    = (*Cars)(nil)
	_ db.BannerCollection = (*Banners)(nil)
	_ db.RentalCollection = (*Rentals)(nil)
	_ db.Transactor       = (*Store)(nil)
)
