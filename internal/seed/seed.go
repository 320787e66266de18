// Package seed loads a demo account and a handful of trips so a fresh
// install has something to show.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/wanderlogue/backend/internal/domain"
	"github.com/pkordes/wanderlogue/backend/internal/service"
)

// Demo account credentials.
const (
	DemoEmail    = "demo@wanderlogue.com"
	DemoUsername = "demo_user"
	DemoPassword = "demo123"
)

// Registrar creates accounts.
type Registrar interface {
	Register(ctx context.Context, reg domain.Registration) (service.Session, error)
}

// TripWriter creates trips and marks favorites.
type TripWriter interface {
	Create(ctx context.Context, ownerID uuid.UUID, trip domain.Trip) (domain.Trip, error)
	ToggleFavorite(ctx context.Context, ownerID, id uuid.UUID) (domain.Trip, error)
}

// DemoTrip is a trip plus whether it should be starred.
type DemoTrip struct {
	Trip     domain.Trip
	Favorite bool
}

// Run registers the demo account and creates its trips through the service
// layer, so seeded rows pass the same validation as user input.
func Run(ctx context.Context, users Registrar, trips TripWriter, log *slog.Logger) (domain.User, error) {
	sess, err := users.Register(ctx, domain.Registration{
		Email:     DemoEmail,
		Username:  DemoUsername,
		Password:  DemoPassword,
		FirstName: "Demo",
		LastName:  "User",
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("seed.Run: register demo user: %w", err)
	}
	owner := sess.User.ID
	log.Info("created demo user", "email", DemoEmail)

	for _, d := range DemoTrips() {
		created, err := trips.Create(ctx, owner, d.Trip)
		if err != nil {
			return domain.User{}, fmt.Errorf("seed.Run: create %q: %w", d.Trip.Title, err)
		}
		if d.Favorite {
			if _, err := trips.ToggleFavorite(ctx, owner, created.ID); err != nil {
				return domain.User{}, fmt.Errorf("seed.Run: favorite %q: %w", d.Trip.Title, err)
			}
		}
	}
	log.Info("created demo trips", "count", len(DemoTrips()))
	return sess.User, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// photos builds image items from url, caption pairs.
func photos(pairs ...string) []domain.MediaItem {
	out := make([]domain.MediaItem, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, domain.MediaItem{Type: domain.MediaImage, URL: pairs[i], Caption: pairs[i+1]})
	}
	return out
}

// DemoTrips returns the demo journal.
func DemoTrips() []DemoTrip {
	const img = "https://images.unsplash.com/"
	return []DemoTrip{
		{Favorite: true, Trip: domain.Trip{
			Title:       "Magical Kyoto",
			Destination: "Kyoto, Japan",
			Location:    &domain.Location{Lat: 35.0116, Lng: 135.7681, Address: "Kyoto, Japan"},
			StartDate:   day(2023, 3, 15),
			EndDate:     day(2023, 3, 22),
			Description: "Explored ancient temples, traditional tea houses, and stunning cherry blossoms in the cultural heart of Japan.",
			Story:       "# Discovering Kyoto\n\nKyoto exceeded all my expectations.\n\n## Highlights\n\n- **Fushimi Inari Shrine**: thousands of vermillion torii gates\n- **Arashiyama Bamboo Grove**\n- **Traditional Tea Ceremony**\n",
			CoverImage:  img + "photo-1493976040374-85c8e12f0c0e?w=800",
			Media: photos(
				img+"photo-1493976040374-85c8e12f0c0e?w=800", "Fushimi Inari Shrine",
				img+"photo-1528164344705-47542687000d?w=800", "Bamboo Forest",
				img+"photo-1545569341-9eb8b30979d9?w=800", "Cherry Blossoms",
			),
			Tags: []string{"japan", "culture", "temples", "cherry-blossoms"},
		}},
		{Favorite: true, Trip: domain.Trip{
			Title:       "Swiss Alps Adventure",
			Destination: "Interlaken, Switzerland",
			Location:    &domain.Location{Lat: 46.6863, Lng: 7.8632, Address: "Interlaken, Switzerland"},
			StartDate:   day(2023, 7, 10),
			EndDate:     day(2023, 7, 17),
			Description: "Breathtaking mountain scenery, charming alpine villages, and thrilling outdoor adventures in the heart of the Swiss Alps.",
			Story:       "# Alpine Paradise\n\n- Paragliding over Interlaken\n- Hiking to Harder Kulm\n- Jungfraujoch, Top of Europe\n",
			CoverImage:  img + "photo-1531366936337-7c912a4589a7?w=800",
			Media: photos(
				img+"photo-1531366936337-7c912a4589a7?w=800", "Mountain Vista",
				img+"photo-1506905925346-21bda4d32df4?w=800", "Alpine Lake",
			),
			Tags: []string{"switzerland", "mountains", "adventure", "hiking"},
		}},
		{Trip: domain.Trip{
			Title:       "Santorini Sunsets",
			Destination: "Santorini, Greece",
			Location:    &domain.Location{Lat: 36.3932, Lng: 25.4615, Address: "Santorini, Greece"},
			StartDate:   day(2023, 9, 5),
			EndDate:     day(2023, 9, 12),
			Description: "White-washed buildings, blue-domed churches, and the most spectacular sunsets over the Aegean Sea.",
			Story:       "# Greek Island Paradise\n\n- Sunset in Oia\n- Wine tasting at local vineyards\n- Sailing around the caldera\n",
			CoverImage:  img + "photo-1613395877344-13d4a8e0d49e?w=800",
			Media: photos(
				img+"photo-1613395877344-13d4a8e0d49e?w=800", "Oia Sunset",
				img+"photo-1570077188670-e3a8d69ac5ff?w=800", "Blue Domes",
			),
			Tags: []string{"greece", "islands", "sunset", "mediterranean"},
		}},
		{Favorite: true, Trip: domain.Trip{
			Title:       "Iceland Road Trip",
			Destination: "Reykjavik, Iceland",
			Location:    &domain.Location{Lat: 64.1466, Lng: -21.9426, Address: "Reykjavik, Iceland"},
			StartDate:   day(2024, 1, 20),
			EndDate:     day(2024, 1, 28),
			Description: "Epic journey through volcanic landscapes, massive waterfalls, and the magical Northern Lights.",
			Story:       "# Land of Fire and Ice\n\n- Northern Lights\n- Blue Lagoon\n- Ice caves\n",
			CoverImage:  img + "photo-1504893524553-b855bce32c67?w=800",
			Media: photos(
				img+"photo-1504893524553-b855bce32c67?w=800", "Northern Lights",
				img+"photo-1531168556467-80aace0d0144?w=800", "Waterfall",
			),
			Tags: []string{"iceland", "northern-lights", "nature", "adventure"},
		}},
		{Trip: domain.Trip{
			Title:       "Bali Retreat",
			Destination: "Ubud, Bali",
			Location:    &domain.Location{Lat: -8.5069, Lng: 115.2625, Address: "Ubud, Bali"},
			StartDate:   day(2024, 2, 14),
			EndDate:     day(2024, 2, 21),
			Description: "Spiritual journey through rice terraces, ancient temples, and yoga retreats in the heart of Bali.",
			Story:       "# Finding Peace in Bali\n\n- Daily yoga\n- Tegalalang Rice Terraces\n- Ubud Monkey Forest\n",
			CoverImage:  img + "photo-1537996194471-e657df975ab4?w=800",
			Media: photos(
				img+"photo-1537996194471-e657df975ab4?w=800", "Rice Terraces",
				img+"photo-1555400038-63f5ba517a47?w=800", "Temple",
			),
			Tags: []string{"bali", "wellness", "culture", "temples"},
		}},
		{Trip: domain.Trip{
			Title:       "New York City Vibes",
			Destination: "New York, USA",
			Location:    &domain.Location{Lat: 40.7128, Lng: -74.0060, Address: "New York, USA"},
			StartDate:   day(2024, 3, 1),
			EndDate:     day(2024, 3, 5),
			Description: "The city that never sleeps: iconic landmarks, world-class museums, and an incredible food scene.",
			Story:       "# Big Apple Adventure\n\n- Central Park\n- A Broadway show\n- Brooklyn Bridge at sunset\n",
			CoverImage:  img + "photo-1496442226666-8d4d0e62e6e9?w=800",
			Media: photos(
				img+"photo-1496442226666-8d4d0e62e6e9?w=800", "NYC Skyline",
				img+"photo-1534430480872-3498386e7856?w=800", "Brooklyn Bridge",
			),
			Tags: []string{"usa", "city", "culture", "urban"},
		}},
	}
}
