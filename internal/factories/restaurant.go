package factories

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/chrisdamba/whattoeat/internal/models"
	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
)

// hour patterns for sample venues, Monday-first
var weeklySchedules = [][7]string{
	{"11:00 AM – 10:00 PM", "11:00 AM – 10:00 PM", "11:00 AM – 10:00 PM", "11:00 AM – 10:00 PM", "11:00 AM – 11:00 PM", "10:00 AM – 11:00 PM", "10:00 AM – 10:00 PM"},
	{"Closed", "11:30 AM – 2:30 PM, 5:30 PM – 10:30 PM", "11:30 AM – 2:30 PM, 5:30 PM – 10:30 PM", "11:30 AM – 2:30 PM, 5:30 PM – 10:30 PM", "11:30 AM – 2:30 PM, 5:30 PM – 10:30 PM", "11:30 AM – 10:30 PM", "11:30 AM – 9:30 PM"},
	{"7:00 AM – 3:00 PM", "7:00 AM – 3:00 PM", "7:00 AM – 3:00 PM", "7:00 AM – 3:00 PM", "7:00 AM – 3:00 PM", "8:00 AM – 4:00 PM", "Closed"},
	{"8:00 PM – 2:00 AM", "8:00 PM – 2:00 AM", "8:00 PM – 2:00 AM", "8:00 PM – 2:00 AM", "8:00 PM – 3:00 AM", "8:00 PM – 3:00 AM", "Closed"},
	{"Open 24 hours", "Open 24 hours", "Open 24 hours", "Open 24 hours", "Open 24 hours", "Open 24 hours", "Open 24 hours"},
}

var weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// RestaurantFactory makes sample venues shown when no places provider is
// configured or the provider fails. Output is reproducible for a given seed.
type RestaurantFactory struct {
	mu   sync.Mutex
	rng  *rand.Rand
	fake faker.Faker
}

func NewRestaurantFactory(seed int64) *RestaurantFactory {
	return &RestaurantFactory{
		rng:  rand.New(rand.NewSource(seed)),
		fake: faker.NewWithSeed(rand.NewSource(seed + 1)),
	}
}

// CreateRestaurant places a venue serving cuisine within radiusKm of near.
func (rf *RestaurantFactory) CreateRestaurant(near models.Location, cuisine string, radiusKm float64) models.Restaurant {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.createRestaurant(near, cuisine, radiusKm, map[string]bool{})
}

// createRestaurant needs rf.mu held. Slugs are unique within usedSlugs only.
func (rf *RestaurantFactory) createRestaurant(near models.Location, cuisine string, radiusKm float64, usedSlugs map[string]bool) models.Restaurant {

	latRange := radiusKm / 111.0
	lngRange := latRange / math.Cos(near.Lat*math.Pi/180.0)
	loc := models.Location{
		Lat: near.Lat + (rf.rng.Float64()*2-1)*latRange,
		Lng: near.Lng + (rf.rng.Float64()*2-1)*lngRange,
	}

	name := fmt.Sprintf("%s %s", rf.fake.Person().LastName(), cuisineSuffix(cuisine))
	schedule := weeklySchedules[rf.rng.Intn(len(weeklySchedules))]
	weekdayText := make([]string, len(schedule))
	for i, h := range schedule {
		weekdayText[i] = weekdayNames[i] + ": " + h
	}
	priceLevel := rf.rng.Intn(4) + 1
	slug := createUniqueSlug(name, usedSlugs)

	return models.Restaurant{
		ID:           cuid.New(),
		PlaceID:      "sample-" + slug,
		Name:         name,
		Address:      rf.fake.Address().StreetAddress(),
		Rating:       math.Round((3.5+rf.rng.Float64()*1.5)*10) / 10,
		PriceLevel:   priceLevel,
		PriceRange:   strings.Repeat("$", priceLevel),
		Cuisine:      cuisine,
		Location:     loc,
		Phone:        rf.fake.Phone().Number(),
		Website:      "https://" + slug + ".example.com",
		OpeningHours: &models.OpeningHours{WeekdayText: weekdayText},
		Distance:     models.FormatDistance(near.DistanceKm(loc)),
		Sample:       true,
	}
}

// CreateRestaurants returns n venues sorted nearest first.
func (rf *RestaurantFactory) CreateRestaurants(n int, near models.Location, cuisine string, radiusKm float64) []models.Restaurant {
	rf.mu.Lock()
	usedSlugs := make(map[string]bool, n)
	out := make([]models.Restaurant, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, rf.createRestaurant(near, cuisine, radiusKm, usedSlugs))
	}
	rf.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		return near.DistanceKm(out[i].Location) < near.DistanceKm(out[j].Location)
	})
	return out
}

func cuisineSuffix(cuisine string) string {
	switch strings.ToLower(cuisine) {
	case "japanese":
		return "Izakaya"
	case "korean":
		return "BBQ House"
	case "mexican":
		return "Cantina"
	case "spanish":
		return "Tapas Bar"
	case "italian":
		return "Trattoria"
	case "french":
		return "Bistro"
	case "hawker":
		return "Food Centre"
	case "healthy":
		return "Salad Co."
	case "":
		return "Kitchen"
	}
	return cuisine + " Kitchen"
}

func createUniqueSlug(name string, used map[string]bool) string {
	base := strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return -1
	}, base)

	slug := base
	counter := 1

	for {
		if !used[slug] {
			used[slug] = true
			return slug
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
		counter++
	}
}
