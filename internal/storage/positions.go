package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ravila/patrimonio/internal/models"
)

// PositionRepository provides position data access
type PositionRepository struct {
	db *DB
}

// NewPositionRepository creates a new position repository
func NewPositionRepository(db *DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// Create inserts a new position. An empty ID gets a generated one.
func (r *PositionRepository) Create(p *models.Position) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	composition, err := marshalComposition(p.Composition)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO positions (
			id, name, ticker, asset_type, category, shares, currency,
			account, cost_basis, current_value, purchase_date, composition
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		p.ID,
		p.Name,
		p.Ticker,
		p.AssetType,
		string(p.Category),
		p.Shares.String(),
		p.Currency,
		p.Account,
		p.CostBasis.String(),
		p.CurrentValue.String(),
		p.PurchaseDate,
		composition,
	)
	return err
}

// List retrieves all positions ordered by current value
func (r *PositionRepository) List() ([]models.Position, error) {
	query := `
		SELECT id, name, ticker, asset_type, category, shares, currency,
			account, cost_basis, current_value, purchase_date, composition
		FROM positions ORDER BY current_value DESC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []models.Position
	for rows.Next() {
		p, err := scanPositionRow(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, *p)
	}

	return positions, rows.Err()
}

// GetByID retrieves a single position, nil when not found
func (r *PositionRepository) GetByID(id string) (*models.Position, error) {
	query := `
		SELECT id, name, ticker, asset_type, category, shares, currency,
			account, cost_basis, current_value, purchase_date, composition
		FROM positions WHERE id = ?
	`
	rows, err := r.db.Query(query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanPositionRow(rows)
}

// Update modifies an existing position
func (r *PositionRepository) Update(p *models.Position) error {
	composition, err := marshalComposition(p.Composition)
	if err != nil {
		return err
	}

	query := `
		UPDATE positions SET
			name = ?, ticker = ?, asset_type = ?, category = ?, shares = ?,
			currency = ?, account = ?, cost_basis = ?, current_value = ?,
			purchase_date = ?, composition = ?, updated_at = ?
		WHERE id = ?
	`
	_, err = r.db.Exec(query,
		p.Name,
		p.Ticker,
		p.AssetType,
		string(p.Category),
		p.Shares.String(),
		p.Currency,
		p.Account,
		p.CostBasis.String(),
		p.CurrentValue.String(),
		p.PurchaseDate,
		composition,
		time.Now().UTC(),
		p.ID,
	)
	return err
}

// UpdateValue stores a freshly computed market value for a position
func (r *PositionRepository) UpdateValue(id string, value decimal.Decimal) error {
	_, err := r.db.Exec(
		"UPDATE positions SET current_value = ?, updated_at = ? WHERE id = ?",
		value.String(), time.Now().UTC(), id,
	)
	return err
}

// Delete removes a position
func (r *PositionRepository) Delete(id string) error {
	_, err := r.db.Exec("DELETE FROM positions WHERE id = ?", id)
	return err
}

// ReplaceAll swaps the full position list in one transaction
func (r *PositionRepository) ReplaceAll(positions []models.Position) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM positions"); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO positions (
			id, name, ticker, asset_type, category, shares, currency,
			account, cost_basis, current_value, purchase_date, composition
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range positions {
		p := &positions[i]
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		composition, err := marshalComposition(p.Composition)
		if err != nil {
			return err
		}
		_, err = stmt.Exec(
			p.ID,
			p.Name,
			p.Ticker,
			p.AssetType,
			string(p.Category),
			p.Shares.String(),
			p.Currency,
			p.Account,
			p.CostBasis.String(),
			p.CurrentValue.String(),
			p.PurchaseDate,
			composition,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Count returns the number of stored positions
func (r *PositionRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM positions").Scan(&n)
	return n, err
}

// SeedFromFile loads positions from a JSON file when the table is
// empty. Re-running against a populated table is a no-op so restarts
// never clobber edits.
func (r *PositionRepository) SeedFromFile(path string) error {
	n, err := r.Count()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var positions []models.Position
	if err := json.Unmarshal(data, &positions); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	return r.ReplaceAll(positions)
}

func scanPositionRow(rows *sql.Rows) (*models.Position, error) {
	var p models.Position
	var shares, costBasis, currentValue string
	var category string
	var ticker, assetType, account, composition sql.NullString
	var purchaseDate sql.NullTime

	err := rows.Scan(
		&p.ID, &p.Name, &ticker, &assetType, &category, &shares,
		&p.Currency, &account, &costBasis, &currentValue, &purchaseDate, &composition,
	)
	if err != nil {
		return nil, err
	}

	p.Category = models.AssetClass(category)
	p.Shares, _ = decimal.NewFromString(shares)
	p.CostBasis, _ = decimal.NewFromString(costBasis)
	p.CurrentValue, _ = decimal.NewFromString(currentValue)

	if ticker.Valid {
		p.Ticker = ticker.String
	}
	if assetType.Valid {
		p.AssetType = assetType.String
	}
	if account.Valid {
		p.Account = account.String
	}
	if purchaseDate.Valid {
		p.PurchaseDate = purchaseDate.Time
	}
	if composition.Valid && composition.String != "" {
		if err := json.Unmarshal([]byte(composition.String), &p.Composition); err != nil {
			return nil, fmt.Errorf("failed to parse composition for %s: %w", p.ID, err)
		}
	}

	return &p, nil
}

func marshalComposition(c map[models.AssetClass]decimal.Decimal) (string, error) {
	if len(c) == 0 {
		return "", nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal composition: %w", err)
	}
	return string(data), nil
}

// ProfileRepository persists the investor profile in the settings table
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileSettingKey = "investor_profile"

// Get retrieves the stored investor profile. A missing row yields a
// moderate default so the dashboard always renders.
func (r *ProfileRepository) Get() (*models.InvestorProfile, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM settings WHERE key = ?", profileSettingKey).Scan(&value)
	if err == sql.ErrNoRows {
		return &models.InvestorProfile{
			Name:          "Family",
			RiskTolerance: "moderate",
			Objective:     "moderate_growth",
		}, nil
	}
	if err != nil {
		return nil, err
	}

	var profile models.InvestorProfile
	if err := json.Unmarshal([]byte(value), &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	return &profile, nil
}

// Save upserts the investor profile
func (r *ProfileRepository) Save(profile *models.InvestorProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	query := `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	_, err = r.db.Exec(query, profileSettingKey, string(data), time.Now().UTC())
	return err
}
