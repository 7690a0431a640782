package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ravila/patrimonio/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func TestPositionRepository_CreateAndGet(t *testing.T) {
	repo := NewPositionRepository(testDB(t))

	position := &models.Position{
		Name:         "MSCI World ETF",
		Ticker:       "IWDA.AS",
		AssetType:    "ETF",
		Category:     models.AssetClassEquities,
		Shares:       decimal.NewFromInt(100),
		Currency:     "EUR",
		Account:      "Broker A",
		CostBasis:    decimal.NewFromInt(8000),
		CurrentValue: decimal.NewFromInt(10000),
		PurchaseDate: time.Date(2022, 3, 10, 0, 0, 0, 0, time.UTC),
	}

	if err := repo.Create(position); err != nil {
		t.Fatalf("Failed to create: %v", err)
	}
	if position.ID == "" {
		t.Fatal("Expected generated id")
	}

	got, err := repo.GetByID(position.ID)
	if err != nil {
		t.Fatalf("Failed to get: %v", err)
	}
	if got == nil {
		t.Fatal("Expected position to be found")
	}
	if got.Name != "MSCI World ETF" || got.Category != models.AssetClassEquities {
		t.Errorf("Unexpected position: %+v", got)
	}
	if !got.Shares.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Shares = %s, want 100", got.Shares)
	}
	if !got.PurchaseDate.Equal(position.PurchaseDate) {
		t.Errorf("PurchaseDate = %s, want %s", got.PurchaseDate, position.PurchaseDate)
	}
}

func TestPositionRepository_CompositionRoundTrip(t *testing.T) {
	repo := NewPositionRepository(testDB(t))

	position := &models.Position{
		Name:         "Balanced Fund",
		Category:     models.AssetClassEquities,
		Currency:     "EUR",
		CurrentValue: decimal.NewFromInt(10000),
		Composition: map[models.AssetClass]decimal.Decimal{
			models.AssetClassEquities:    decimal.NewFromFloat(0.6),
			models.AssetClassFixedIncome: decimal.NewFromFloat(0.4),
		},
	}

	if err := repo.Create(position); err != nil {
		t.Fatalf("Failed to create: %v", err)
	}

	got, err := repo.GetByID(position.ID)
	if err != nil {
		t.Fatalf("Failed to get: %v", err)
	}
	if len(got.Composition) != 2 {
		t.Fatalf("Expected 2 composition entries, got %d", len(got.Composition))
	}
	if !got.Composition[models.AssetClassEquities].Equal(decimal.NewFromFloat(0.6)) {
		t.Errorf("equities fraction = %s, want 0.6", got.Composition[models.AssetClassEquities])
	}
}

func TestPositionRepository_ListOrderedByValue(t *testing.T) {
	repo := NewPositionRepository(testDB(t))

	for _, p := range []models.Position{
		{Name: "Small", Category: models.AssetClassCash, Currency: "EUR", CurrentValue: decimal.NewFromInt(1000)},
		{Name: "Big", Category: models.AssetClassEquities, Currency: "EUR", CurrentValue: decimal.NewFromInt(9000)},
	} {
		pos := p
		if err := repo.Create(&pos); err != nil {
			t.Fatalf("Failed to create: %v", err)
		}
	}

	positions, err := repo.List()
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(positions) != 2 {
		t.Fatalf("Expected 2 positions, got %d", len(positions))
	}
	if positions[0].Name != "Big" {
		t.Errorf("Expected largest position first, got %s", positions[0].Name)
	}
}

func TestPositionRepository_UpdateAndDelete(t *testing.T) {
	repo := NewPositionRepository(testDB(t))

	position := &models.Position{
		Name: "Gold ETC", Category: models.AssetClassGold,
		Currency: "EUR", CurrentValue: decimal.NewFromInt(2000),
	}
	if err := repo.Create(position); err != nil {
		t.Fatalf("Failed to create: %v", err)
	}

	position.CurrentValue = decimal.NewFromInt(2200)
	if err := repo.Update(position); err != nil {
		t.Fatalf("Failed to update: %v", err)
	}

	got, _ := repo.GetByID(position.ID)
	if !got.CurrentValue.Equal(decimal.NewFromInt(2200)) {
		t.Errorf("CurrentValue = %s, want 2200", got.CurrentValue)
	}

	if err := repo.Delete(position.ID); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	got, err := repo.GetByID(position.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != nil {
		t.Error("Expected position to be gone")
	}
}

func TestPositionRepository_SeedFromFile(t *testing.T) {
	repo := NewPositionRepository(testDB(t))

	seed := []models.Position{
		{Name: "MSCI World ETF", Ticker: "IWDA.AS", Category: models.AssetClassEquities,
			Currency: "EUR", CostBasis: decimal.NewFromInt(8000), CurrentValue: decimal.NewFromInt(10000)},
		{Name: "Cuenta corriente", Category: models.AssetClassCash,
			Currency: "EUR", CostBasis: decimal.NewFromInt(5000), CurrentValue: decimal.NewFromInt(5000)},
	}
	data, _ := json.Marshal(seed)
	path := filepath.Join(t.TempDir(), "positions.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write seed: %v", err)
	}

	if err := repo.SeedFromFile(path); err != nil {
		t.Fatalf("Failed to seed: %v", err)
	}

	positions, _ := repo.List()
	if len(positions) != 2 {
		t.Fatalf("Expected 2 seeded positions, got %d", len(positions))
	}

	// Seeding again must not duplicate
	if err := repo.SeedFromFile(path); err != nil {
		t.Fatalf("Failed to re-seed: %v", err)
	}
	positions, _ = repo.List()
	if len(positions) != 2 {
		t.Errorf("Re-seed duplicated rows: %d", len(positions))
	}
}

func TestProfileRepository_DefaultAndSave(t *testing.T) {
	repo := NewProfileRepository(testDB(t))

	profile, err := repo.Get()
	if err != nil {
		t.Fatalf("Failed to get default profile: %v", err)
	}
	if profile.RiskTolerance != "moderate" {
		t.Errorf("Default tolerance = %s, want moderate", profile.RiskTolerance)
	}

	profile.Name = "Avila Family"
	profile.RiskTolerance = "aggressive"
	profile.HorizonYears = 15
	if err := repo.Save(profile); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	got, err := repo.Get()
	if err != nil {
		t.Fatalf("Failed to get saved profile: %v", err)
	}
	if got.Name != "Avila Family" || got.RiskTolerance != "aggressive" || got.HorizonYears != 15 {
		t.Errorf("Unexpected profile: %+v", got)
	}
}
