package seed

import "github.com/ukydev/car-showroom/internal/models"

const unsplash = "https://images.unsplash.com/"

func sampleBanners() []models.Banner {
	mk := func(order int, title, subtitle, description, image, buttonText, buttonLink string) models.Banner {
		b := models.NewBanner()
		b.Order = order
		b.Title = title
		b.Subtitle = subtitle
		b.Description = description
		b.Image = unsplash + image + "?auto=format&fit=crop&w=1200&q=80"
		b.ButtonText = buttonText
		b.ButtonLink = buttonLink
		return b
	}
	return []models.Banner{
		mk(1, "Welcome to Our Car Showroom", "Find Your Dream Car",
			"Discover our extensive collection of premium vehicles from top brands worldwide.",
			"photo-1492144534655-ae79c964c9d7", "Explore Cars", "/cars"),
		mk(2, "Luxury Meets Performance", "Premium Car Collection",
			"Experience the perfect blend of luxury, comfort, and cutting-edge technology.",
			"photo-1503376780353-7e6692767b70", "View Collection", "/cars"),
		mk(3, "Rent Your Perfect Ride", "Car Rental Services",
			"Short-term or long-term rentals available. Drive your dream car today!",
			"photo-1449824913935-59a10b8d2000", "Rent Now", "/rental"),
	}
}

func sampleBrands() []models.Brand {
	mk := func(order int, name, logo, description, website, country string, founded int) models.Brand {
		b := models.NewBrand()
		b.Order = order
		b.Name = name
		b.Logo = unsplash + logo + "?auto=format&fit=crop&w=200&q=80"
		b.Description = description
		b.Website = website
		b.Country = country
		b.FoundedYear = founded
		return b
	}
	return []models.Brand{
		mk(1, "Toyota", "photo-1617788138017-80ad40651399",
			"Japanese automotive manufacturer known for reliability and innovation.",
			"https://www.toyota.com", "Japan", 1937),
		mk(2, "BMW", "photo-1617886322207-6c48c65f2700",
			"German luxury vehicle manufacturer known for performance and luxury.",
			"https://www.bmw.com", "Germany", 1916),
		mk(3, "Mercedes-Benz", "photo-1618843479313-40f8afb4b4d8",
			"German luxury automotive brand known for engineering excellence.",
			"https://www.mercedes-benz.com", "Germany", 1926),
		mk(4, "Audi", "photo-1606664515524-ed2f786a0bd6",
			"German luxury automobile manufacturer known for innovation and design.",
			"https://www.audi.com", "Germany", 1909),
		mk(5, "Honda", "photo-1618843479313-40f8afb4b4d8",
			"Japanese automotive manufacturer known for reliability and fuel efficiency.",
			"https://www.honda.com", "Japan", 1948),
	}
}

type carSpec struct {
	name, brand, model, category, description string
	price, rentalPrice                        float64
	rental, featured                          bool
	images                                    []string
	specs                                     models.Specifications
	features                                  []string
}

func sampleCars() []models.Car {
	specs := []carSpec{
		{
			name: "Toyota Camry 2024", brand: "Toyota", model: "Camry", category: "Sedan",
			description: "The Toyota Camry combines style, efficiency, and reliability in a midsize sedan that offers exceptional value.",
			price:       25000, rentalPrice: 45, rental: true, featured: true,
			images: []string{"photo-1621007947382-bb3c3994e3fb", "photo-1606664515524-ed2f786a0bd6"},
			specs: models.Specifications{Engine: "2.5L 4-Cylinder", FuelType: "Petrol", Transmission: "Automatic", Seating: 5,
				FuelEconomy: "28/39 mpg", TopSpeed: "130 mph", Acceleration: "0-60 in 8.4s", Color: "Silver"},
			features: []string{"Adaptive Cruise Control", "Lane Departure Warning", "Automatic Emergency Braking", "Apple CarPlay", "Android Auto"},
		},
		{
			name: "BMW X5 2024", brand: "BMW", model: "X5", category: "SUV",
			description: "The BMW X5 is a luxury SUV that delivers exceptional performance and comfort for any adventure.",
			price:       65000, rentalPrice: 120, rental: true, featured: true,
			images: []string{"photo-1555215695-3004980ad54e", "photo-1494905998402-395d579af36f"},
			specs: models.Specifications{Engine: "3.0L Twin-Turbo I6", FuelType: "Petrol", Transmission: "Automatic", Seating: 7,
				FuelEconomy: "21/26 mpg", TopSpeed: "155 mph", Acceleration: "0-60 in 5.8s", Color: "Black"},
			features: []string{"xDrive AWD", "Panoramic Sunroof", "Harman Kardon Audio", "Wireless Charging", "Gesture Control"},
		},
		{
			name: "Mercedes-Benz C-Class 2024", brand: "Mercedes-Benz", model: "C-Class", category: "Sedan",
			description: "The Mercedes-Benz C-Class sets the standard for luxury sedans with its refined interior and advanced technology.",
			price:       45000, featured: true,
			images: []string{"photo-1563720223185-11003d516935", "photo-1552519507-da3b142c6e3d"},
			specs: models.Specifications{Engine: "2.0L Turbo 4-Cylinder", FuelType: "Petrol", Transmission: "Automatic", Seating: 5,
				FuelEconomy: "23/32 mpg", TopSpeed: "149 mph", Acceleration: "0-60 in 6.0s", Color: "White"},
			features: []string{"MBUX Infotainment", "Active Brake Assist", "Blind Spot Assist", "LED Headlights", "Dual-Zone Climate"},
		},
		{
			name: "Audi A4 2024", brand: "Audi", model: "A4", category: "Sedan",
			description: "The Audi A4 delivers a perfect balance of performance, luxury, and technology in a compact executive car.",
			price:       40000, rentalPrice: 80, rental: true,
			images: []string{"photo-1606664515524-ed2f786a0bd6"},
			specs: models.Specifications{Engine: "2.0L TFSI Turbo", FuelType: "Petrol", Transmission: "Automatic", Seating: 5,
				FuelEconomy: "24/31 mpg", TopSpeed: "140 mph", Acceleration: "0-60 in 5.7s", Color: "Blue"},
			features: []string{"Quattro AWD", "Virtual Cockpit", "MMI Navigation", "Bang & Olufsen Audio", "Audi Pre Sense"},
		},
		{
			name: "Honda Civic 2024", brand: "Honda", model: "Civic", category: "Sedan",
			description: "The Honda Civic offers exceptional fuel economy, reliability, and value in a compact sedan.",
			price:       23000, rentalPrice: 35, rental: true,
			images: []string{"photo-1552519507-da3b142c6e3d"},
			specs: models.Specifications{Engine: "2.0L 4-Cylinder", FuelType: "Petrol", Transmission: "Manual", Seating: 5,
				FuelEconomy: "31/40 mpg", TopSpeed: "125 mph", Acceleration: "0-60 in 8.2s", Color: "Red"},
			features: []string{"Honda Sensing", "Apple CarPlay", "Android Auto", "Multi-Angle Rearview Camera", "Remote Engine Start"},
		},
	}

	cars := make([]models.Car, 0, len(specs))
	for _, s := range specs {
		car := models.NewCar()
		car.Name = s.name
		car.Brand = s.brand
		car.Model = s.model
		car.Year = 2024
		car.Price = s.price
		car.Description = s.description
		car.Category = s.category
		car.IsRental = s.rental
		car.RentalPrice = s.rentalPrice
		car.IsFeatured = s.featured
		car.Specifications = s.specs
		car.Features = s.features
		for _, img := range s.images {
			car.Images = append(car.Images, unsplash+img+"?auto=format&fit=crop&w=800&q=80")
		}
		cars = append(cars, car)
	}
	return cars
}
