// Package catalog owns the writes that link cars to brands. Cars reference a
// brand by name, and each brand caches how many cars reference it in
// carCount. Every car or brand mutation that can change that relation goes
// through Service so the cached count follows.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/car-showroom/internal/apperr"
	"github.com/ukydev/car-showroom/internal/db"
	"github.com/ukydev/car-showroom/internal/events"
	"github.com/ukydev/car-showroom/internal/models"
)

const (
	msgBrandNotFound = "Brand not found. Please create the brand first."
	msgBrandExists   = "Brand with this name already exists"
)

// Service keeps Brand.carCount consistent with the cars that name the brand.
type Service struct {
	brands db.BrandCollection
	cars   db.CarCollection
	tx     db.Transactor
	events events.Publisher
}

func NewService(brands db.BrandCollection, cars db.CarCollection, tx db.Transactor, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service{brands: brands, cars: cars, tx: tx, events: publisher}
}

// resolveBrand finds the brand a car names. A missing brand is a validation
// error on the brand field.
func (s *Service) resolveBrand(ctx context.Context, name string) (*models.Brand, error) {
	brand, err := s.brands.FindBrandByName(ctx, name)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, apperr.Field("brand", msgBrandNotFound)
		}
		return nil, err
	}
	return brand, nil
}

// incrementError reports a brand that vanished after resolveBrand as the same
// brand field error.
func incrementError(brand *models.Brand, err error) error {
	if db.IsNotFound(err) {
		return apperr.Field("brand", msgBrandNotFound)
	}
	return fmt.Errorf("increment %s car count: %w", brand.Name, err)
}

// lookupBrand is resolveBrand for paths that tolerate orphaned names.
func (s *Service) lookupBrand(ctx context.Context, name string) (*models.Brand, error) {
	brand, err := s.brands.FindBrandByName(ctx, name)
	if db.IsNotFound(err) {
		return nil, nil
	}
	return brand, err
}

// CreateCar validates car, stores it under the canonical brand name and
// increments that brand's count.
func (s *Service) CreateCar(ctx context.Context, car *models.Car) error {
	if err := car.Validate(); err != nil {
		return err
	}
	brand, err := s.resolveBrand(ctx, car.Brand)
	if err != nil {
		return err
	}
	car.Brand = brand.Name
	car.Views = 0

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.cars.InsertCar(ctx, car); err != nil {
			return fmt.Errorf("insert car: %w", err)
		}
		if err := s.brands.IncrementCarCount(ctx, brand.ID, 1); err != nil {
			return incrementError(brand, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.CarCreated, car.ID.Hex(), brand.Name)
	return nil
}

// UpdateCar replaces current with updated. When the brand changes, the old
// brand loses one car and the new brand gains one.
func (s *Service) UpdateCar(ctx context.Context, current, updated *models.Car) error {
	updated.ID = current.ID
	updated.CreatedAt = current.CreatedAt
	updated.Views = current.Views
	if err := updated.Validate(); err != nil {
		return err
	}

	var oldBrand, newBrand *models.Brand
	brandChanged := !strings.EqualFold(current.Brand, updated.Brand)
	if brandChanged {
		var err error
		if newBrand, err = s.resolveBrand(ctx, updated.Brand); err != nil {
			return err
		}
		updated.Brand = newBrand.Name
		if oldBrand, err = s.lookupBrand(ctx, current.Brand); err != nil {
			return err
		}
	} else {
		updated.Brand = current.Brand
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.cars.UpdateCar(ctx, updated); err != nil {
			return fmt.Errorf("update car: %w", err)
		}
		if !brandChanged {
			return nil
		}
		if oldBrand != nil {
			if err := s.brands.IncrementCarCount(ctx, oldBrand.ID, -1); err != nil {
				return fmt.Errorf("decrement %s car count: %w", oldBrand.Name, err)
			}
		}
		if err := s.brands.IncrementCarCount(ctx, newBrand.ID, 1); err != nil {
			return incrementError(newBrand, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.CarUpdated, updated.ID.Hex(), updated.Brand)
	return nil
}

// DeleteCar removes car and decrements its brand's count. An orphaned brand
// name is tolerated.
func (s *Service) DeleteCar(ctx context.Context, car *models.Car) error {
	brand, err := s.lookupBrand(ctx, car.Brand)
	if err != nil {
		return err
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.cars.DeleteCar(ctx, car.ID); err != nil {
			return fmt.Errorf("delete car: %w", err)
		}
		if brand == nil {
			return nil
		}
		if err := s.brands.IncrementCarCount(ctx, brand.ID, -1); err != nil {
			return fmt.Errorf("decrement %s car count: %w", brand.Name, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.CarDeleted, car.ID.Hex(), car.Brand)
	return nil
}

// CreateBrand stores a new brand with a zero count. Names are unique
// ignoring case.
func (s *Service) CreateBrand(ctx context.Context, brand *models.Brand) error {
	if err := brand.Validate(); err != nil {
		return err
	}
	exists, err := s.brands.BrandNameExists(ctx, brand.Name, brand.ID)
	if err != nil {
		return err
	}
	if exists {
		return apperr.Conflict(msgBrandExists)
	}
	brand.CarCount = 0
	if err := s.brands.InsertBrand(ctx, brand); err != nil {
		if db.IsDuplicate(err) {
			return apperr.Conflict(msgBrandExists)
		}
		return err
	}
	return nil
}

// UpdateBrand replaces current with updated. A rename is carried to every car
// that named the old brand, and the count is taken again under the new name
// since orphaned cars may already use it.
func (s *Service) UpdateBrand(ctx context.Context, current, updated *models.Brand) error {
	updated.ID = current.ID
	updated.CreatedAt = current.CreatedAt
	updated.CarCount = current.CarCount
	if err := updated.Validate(); err != nil {
		return err
	}

	renamed := updated.Name != current.Name
	if renamed {
		exists, err := s.brands.BrandNameExists(ctx, updated.Name, current.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflict(msgBrandExists)
		}
	}

	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.brands.UpdateBrand(ctx, updated); err != nil {
			if db.IsDuplicate(err) {
				return apperr.Conflict(msgBrandExists)
			}
			return fmt.Errorf("update brand: %w", err)
		}
		if !renamed {
			return nil
		}
		n, err := s.cars.RenameBrand(ctx, current.Name, updated.Name)
		if err != nil {
			return fmt.Errorf("rename brand on cars: %w", err)
		}
		if n > 0 {
			log.WithFields(log.Fields{"from": current.Name, "to": updated.Name, "cars": n}).Info("brand renamed on cars")
		}
		count, err := s.cars.CountCarsByBrand(ctx, updated.Name)
		if err != nil {
			return fmt.Errorf("count cars: %w", err)
		}
		if err := s.brands.SetCarCount(ctx, updated.ID, count); err != nil {
			return fmt.Errorf("set car count: %w", err)
		}
		updated.CarCount = count
		return nil
	})
}

// DeleteBrand removes brand unless any car still names it.
func (s *Service) DeleteBrand(ctx context.Context, brand *models.Brand) error {
	n, err := s.cars.CountCarsByBrand(ctx, brand.Name)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflict(fmt.Sprintf("Cannot delete brand. %d cars are associated with this brand.", n))
	}
	return s.brands.DeleteBrand(ctx, brand.ID)
}

// RecomputeBrand overwrites brand's carCount with the live number of cars
// naming it and returns that number.
func (s *Service) RecomputeBrand(ctx context.Context, brand *models.Brand) (int64, error) {
	n, err := s.cars.CountCarsByBrand(ctx, brand.Name)
	if err != nil {
		return 0, err
	}
	if err := s.brands.SetCarCount(ctx, brand.ID, n); err != nil {
		return 0, err
	}
	if n != brand.CarCount {
		log.WithFields(log.Fields{"brand": brand.Name, "stored": brand.CarCount, "actual": n}).Info("brand car count corrected")
		s.publishCount(ctx, brand.Name, n)
	}
	brand.CarCount = n
	return n, nil
}

// RecomputeAll runs RecomputeBrand for every brand and reports how many
// stored counts were wrong.
func (s *Service) RecomputeAll(ctx context.Context) (int, error) {
	brands, err := s.brands.FindBrands(ctx, db.BrandFilter{})
	if err != nil {
		return 0, err
	}
	corrected := 0
	for i := range brands {
		if err := ctx.Err(); err != nil {
			return corrected, err
		}
		stored := brands[i].CarCount
		n, err := s.RecomputeBrand(ctx, &brands[i])
		if err != nil {
			return corrected, fmt.Errorf("recompute %s: %w", brands[i].Name, err)
		}
		if n != stored {
			corrected++
		}
	}
	return corrected, nil
}

func (s *Service) publish(ctx context.Context, eventType, carID, brand string) {
	s.events.Publish(ctx, events.Event{Type: eventType, CarID: carID, Brand: brand, At: time.Now().UTC()})
}

func (s *Service) publishCount(ctx context.Context, brand string, count int64) {
	s.events.Publish(ctx, events.Event{Type: events.BrandRecounted, Brand: brand, CarCount: &count, At: time.Now().UTC()})
}
