package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/spec-kit/lostfound-service/internal/domain"
	"github.com/spec-kit/lostfound-service/internal/repository"
)

// SeedPassword is the password of every seeded account.
const SeedPassword = "emsi2024"

func day(year int, month time.Month, d, hour, min int) time.Time {
	return time.Date(year, month, d, hour, min, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

// SeedUsers returns the sample campus accounts. passwordHash is stored for all of them.
func SeedUsers(passwordHash string) []domain.User {
	users := []domain.User{
		{ID: 1, Name: "Admin EMSI", Email: "admin@emsi.ma", Role: domain.RoleAdmin, Status: domain.UserStatusActive,
			LastLogin: ptr(day(2024, time.January, 20, 10, 30)), CreatedAt: day(2024, time.January, 1, 0, 0)},
		{ID: 2, Name: "User EMSI", Email: "user@emsi.ma", Role: domain.RoleUser, Status: domain.UserStatusActive,
			LastLogin: ptr(day(2024, time.January, 19, 15, 45)), CreatedAt: day(2024, time.January, 2, 0, 0)},
		{ID: 3, Name: "Sarah Ahmed", Email: "sarah.ahmed@emsi.ma", Role: domain.RoleUser, Status: domain.UserStatusActive,
			LastLogin: ptr(day(2024, time.January, 18, 9, 15)), CreatedAt: day(2024, time.January, 3, 0, 0)},
		{ID: 4, Name: "Mohammed Ali", Email: "m.ali@emsi.ma", Role: domain.RoleUser, Status: domain.UserStatusInactive,
			LastLogin: ptr(day(2024, time.January, 10, 14, 20)), CreatedAt: day(2024, time.January, 4, 0, 0)},
		{ID: 5, Name: "Fatima Zahra", Email: "f.zahra@emsi.ma", Role: domain.RoleUser, Status: domain.UserStatusActive,
			LastLogin: ptr(day(2024, time.January, 17, 11, 0)), CreatedAt: day(2024, time.January, 5, 0, 0)},
	}
	for i := range users {
		users[i].PasswordHash = passwordHash
	}
	return users
}

// SeedItems returns the sample campus reports.
func SeedItems() []domain.Item {
	item := func(id int64, desc, loc string, reported time.Time, status domain.ItemStatus, typ domain.ItemType, by int64, image string) domain.Item {
		return domain.Item{
			ID:               id,
			Description:      desc,
			Location:         loc,
			ReportedDate:     reported,
			Status:           status,
			Type:             typ,
			Category:         domain.CategoryElectronics,
			ImageURL:         image,
			ReportedByUserID: by,
			CreatedAt:        reported,
		}
	}

	return []domain.Item{
		item(1, "iPhone 13 Pro noir avec coque bleue", "Bibliothèque - 2ème étage", day(2024, time.January, 15, 0, 0),
			domain.ItemStatusLost, domain.ItemTypeLost, 2, "https://store.storeimages.cdn-apple.com/4668/as-images.apple.com/is/iphone-13-pro-family-hero"),
		item(2, "Clé USB SanDisk 32GB", "Salle 204 - Département Informatique", day(2024, time.January, 16, 0, 0),
			domain.ItemStatusFound, domain.ItemTypeFound, 3, "https://media.ldlc.com/r1600/ld/products/00/05/82/43/LD0005824321_1.jpg"),
		item(3, "MacBook Pro 13 pouces", "Cafétéria", day(2024, time.January, 17, 0, 0),
			domain.ItemStatusClaimed, domain.ItemTypeLost, 2, "https://store.storeimages.cdn-apple.com/4668/as-images.apple.com/is/mbp-spacegray-select-202206_GEO_FR"),
		item(5, "AirPods Pro avec étui de charge", "Salle de sport", day(2024, time.January, 18, 0, 0),
			domain.ItemStatusLost, domain.ItemTypeLost, 3, "https://store.storeimages.cdn-apple.com/4668/as-images.apple.com/is/MQD83"),
		item(6, "Calculatrice scientifique", "Salle 305 - Département Mathématiques", day(2024, time.January, 19, 0, 0),
			domain.ItemStatusFound, domain.ItemTypeFound, 1, "https://media.ldlc.com/r1600/ld/products/00/05/93/21/LD0005932198_1.jpg"),
		item(9, "iPad Air Gris Sidéral", "Salle de conférence", day(2024, time.January, 22, 0, 0),
			domain.ItemStatusLost, domain.ItemTypeLost, 2, "https://store.storeimages.cdn-apple.com/4668/as-images.apple.com/is/ipad-air-select-wifi-spacegray-202203"),
		item(14, "Chargeur MacBook Pro 60W", "Salle 105", day(2024, time.January, 25, 0, 0),
			domain.ItemStatusFound, domain.ItemTypeFound, 3, "https://store.storeimages.cdn-apple.com/4668/as-images.apple.com/is/MX0K2"),
		item(16, "Souris sans fil Logitech MX Master", "Laboratoire informatique", day(2024, time.January, 26, 0, 0),
			domain.ItemStatusFound, domain.ItemTypeFound, 1, "https://resource.logitech.com/content/dam/logitech/en/products/mice/mx-master-3s/gallery/mx-master-3s-mouse-top-view-graphite.png"),
	}
}

// Seed loads the sample users and items into store.
func Seed(ctx context.Context, store *repository.Store, passwordHash string) error {
	for _, user := range SeedUsers(passwordHash) {
		if err := store.Users.Create(ctx, &user); err != nil {
			return fmt.Errorf("seed user %s: %w", user.Email, err)
		}
	}
	for _, item := range SeedItems() {
		if err := store.Items.Create(ctx, &item); err != nil {
			return fmt.Errorf("seed item %d: %w", item.ID, err)
		}
	}
	return nil
}
