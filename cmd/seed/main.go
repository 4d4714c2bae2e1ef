package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"taplist/internal/batches"
	"taplist/internal/lists"
	"taplist/internal/nfctags"
	"taplist/internal/shared/config"
	"taplist/internal/shared/database"
	"taplist/internal/users"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Taplist Database Seeder...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	// Clean database
	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	// Seed data
	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in the correct order (respecting foreign key constraints)
func (s *Seeder) CleanDatabase() error {
	// Order matters due to foreign key constraints
	// Delete in reverse dependency order
	tables := []string{
		"list_items",
		"lists",
		"tap_events",
		"visitors",
		"nfc_tags",
		"tag_batches",
		"users",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Disable foreign key constraints temporarily
	if err := tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to defer constraints: %w", err)
	}

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	// Re-enable foreign key constraints
	if err := tx.Exec("SET CONSTRAINTS ALL IMMEDIATE").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to restore constraints: %w", err)
	}

	return tx.Commit().Error
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	// Seed users first (no dependencies)
	userIDs, err := s.SeedUsers()
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	// Seed tag batches
	batchIDs, err := s.SeedBatches(userIDs["admin"])
	if err != nil {
		return fmt.Errorf("failed to seed batches: %w", err)
	}

	// Seed NFC tags (one linked to a user as a demo of tag-level attribution)
	if err := s.SeedTags(userIDs["admin"], userIDs["user1"], batchIDs); err != nil {
		return fmt.Errorf("failed to seed tags: %w", err)
	}

	// Seed a starter grocery list for user1
	if err := s.SeedLists(userIDs["user1"]); err != nil {
		return fmt.Errorf("failed to seed lists: %w", err)
	}

	// Clear Redis cache to ensure fresh state
	if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
		log.Printf("Warning: Failed to clear Redis cache: %v", err)
	}

	return nil
}

// SeedUsers creates 3 users: 1 admin and 2 regular users
func (s *Seeder) SeedUsers() (map[string]uuid.UUID, error) {
	fmt.Println("  👤 Seeding users...")

	userIDs := make(map[string]uuid.UUID)

	// Hash password for all users (using "qwerty")
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	usersData := []struct {
		key       string
		firstName string
		lastName  string
		email     string
		role      users.Role
		landing   string
	}{
		{"admin", "Admin", "User", "admin@taplist.local", users.RoleAdmin, "home"},
		{"user1", "Alice", "Nguyen", "alice@taplist.local", users.RoleUser, "list"},
		{"user2", "Bob", "Okafor", "bob@taplist.local", users.RoleUser, "home"},
	}

	for _, userData := range usersData {
		user := users.User{
			ID:                uuid.New(),
			FirstName:         userData.firstName,
			LastName:          userData.lastName,
			Email:             userData.email,
			Password:          string(hashedPassword),
			Role:              userData.role,
			LandingPreference: userData.landing,
			CreatedAt:         time.Now(),
			UpdatedAt:         time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", userData.email, err)
		}

		userIDs[userData.key] = user.ID
		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Email, user.Role)
	}

	return userIDs, nil
}

// SeedBatches creates tag batches representing print runs
func (s *Seeder) SeedBatches(adminID uuid.UUID) (map[string]uuid.UUID, error) {
	fmt.Println("  📦 Seeding tag batches...")

	batchIDs := make(map[string]uuid.UUID)

	batchesData := []struct {
		key         string
		slug        string
		name        string
		description string
	}{
		{"store", "demo-store", "Demo Store Run", "First print run for the demo store shelf stickers"},
		{"fridge", "fridge-magnets", "Fridge Magnets", "Fridge magnet tags handed out at the launch event"},
	}

	for _, batchData := range batchesData {
		batch := batches.TagBatch{
			ID:          uuid.New(),
			Slug:        batchData.slug,
			Name:        batchData.name,
			Description: batchData.description,
			CreatedBy:   adminID,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&batch).Error; err != nil {
			return nil, fmt.Errorf("failed to create batch %s: %w", batch.Slug, err)
		}

		batchIDs[batchData.key] = batch.ID
		fmt.Printf("    ✅ Created batch: %s (/t/%s/...)\n", batch.Name, batch.Slug)
	}

	return batchIDs, nil
}

// SeedTags creates NFC tags across the batches
func (s *Seeder) SeedTags(adminID, linkedUserID uuid.UUID, batchIDs map[string]uuid.UUID) error {
	fmt.Println("  🏷️ Seeding NFC tags...")

	tagsData := []struct {
		batchKey string
		label    string
		status   nfctags.Status
		linked   *uuid.UUID
	}{
		{"store", "Aisle 1 shelf", nfctags.StatusActive, nil},
		{"store", "Aisle 2 shelf", nfctags.StatusActive, nil},
		{"store", "Checkout counter", nfctags.StatusDisabled, nil},
		{"fridge", "Alice's fridge", nfctags.StatusActive, &linkedUserID},
		{"fridge", "Spare magnet", nfctags.StatusActive, nil},
	}

	for _, tagData := range tagsData {
		tag := nfctags.NfcTag{
			ID:           uuid.New(),
			PublicUUID:   uuid.New(),
			BatchID:      batchIDs[tagData.batchKey],
			Label:        tagData.label,
			Status:       tagData.status,
			LinkedUserID: tagData.linked,
			CreatedBy:    adminID,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&tag).Error; err != nil {
			return fmt.Errorf("failed to create tag %s: %w", tag.Label, err)
		}

		fmt.Printf("    ✅ Created tag: %s (public uuid %s)\n", tag.Label, tag.PublicUUID)
	}

	return nil
}

// SeedLists creates a starter grocery list for a user
func (s *Seeder) SeedLists(userID uuid.UUID) error {
	fmt.Println("  🛒 Seeding lists...")

	list := lists.List{
		ID:        uuid.New(),
		UserID:    &userID,
		Name:      "Weekly Groceries",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.db.PostgreSQL.Create(&list).Error; err != nil {
		return fmt.Errorf("failed to create list: %w", err)
	}

	itemsData := []struct {
		name      string
		category  string
		quantity  int
		purchased bool
	}{
		{"Milk", "dairy", 2, false},
		{"Eggs", "dairy", 1, false},
		{"Bread", "bakery", 1, true},
		{"Coffee beans", "pantry", 1, false},
	}

	for _, itemData := range itemsData {
		item := lists.ListItem{
			ID:        uuid.New(),
			ListID:    list.ID,
			Name:      itemData.name,
			Category:  itemData.category,
			Quantity:  itemData.quantity,
			Purchased: itemData.purchased,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if itemData.purchased {
			now := time.Now()
			item.PurchasedAt = &now
		}

		if err := s.db.PostgreSQL.Create(&item).Error; err != nil {
			return fmt.Errorf("failed to create list item %s: %w", item.Name, err)
		}
	}

	fmt.Printf("    ✅ Created list: %s (%d items)\n", list.Name, len(itemsData))
	return nil
}
