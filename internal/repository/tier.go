package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"wcl-enricher/internal/db"
	"wcl-enricher/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type TierRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewTierRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *TierRepository {
	return &TierRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// Create stores an inactive tier config and returns it with its id set.
func (r *TierRepository) Create(ctx context.Context, tier domain.TierConfig) (*domain.TierConfig, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nanoid: %w", err)
	}

	order, err := json.Marshal(tier.EncounterOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to encode encounter order: %w", err)
	}
	names, err := json.Marshal(tier.EncounterNames)
	if err != nil {
		return nil, fmt.Errorf("failed to encode encounter names: %w", err)
	}

	now := time.Now().UTC()
	err = r.queries.InsertTierConfig(ctx, db.InsertTierConfigParams{
		ID:             id,
		ZoneID:         int64(tier.ZoneID),
		ZoneName:       tier.ZoneName,
		EncounterOrder: string(order),
		EncounterNames: string(names),
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert tier config: %w", err)
	}

	tier.ID = id
	tier.IsActive = false
	tier.CreatedAt = now
	tier.UpdatedAt = now
	return &tier, nil
}

func (r *TierRepository) Get(ctx context.Context, id string) (*domain.TierConfig, error) {
	row, err := r.queries.GetTierConfig(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toTierConfig(row)
}

// Active returns the active tier, or nil when none is active.
func (r *TierRepository) Active(ctx context.Context) (*domain.TierConfig, error) {
	row, err := r.queries.GetActiveTierConfig(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toTierConfig(row)
}

func (r *TierRepository) List(ctx context.Context) ([]domain.TierConfig, error) {
	rows, err := r.queries.ListTierConfigs(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.TierConfig, 0, len(rows))
	for _, row := range rows {
		tier, err := toTierConfig(row)
		if err != nil {
			return nil, err
		}
		result = append(result, *tier)
	}
	return result, nil
}

// Activate makes id the only active tier. Returns false when id does not exist,
// in which case the previously active tier is left untouched.
func (r *TierRepository) Activate(ctx context.Context, id string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)
	now := time.Now().UTC()

	if err := qtx.DeactivateTierConfigs(ctx, now); err != nil {
		return false, fmt.Errorf("failed to deactivate tier configs: %w", err)
	}

	n, err := qtx.ActivateTierConfig(ctx, db.ActivateTierConfigParams{UpdatedAt: now, ID: id})
	if err != nil {
		return false, fmt.Errorf("failed to activate tier config: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit tier activation: %w", err)
	}

	r.logger.Info().Str("tier_id", id).Msg("tier config activated")
	return true, nil
}

func toTierConfig(row db.TierConfig) (*domain.TierConfig, error) {
	var order []int
	if err := json.Unmarshal([]byte(row.EncounterOrder), &order); err != nil {
		return nil, fmt.Errorf("failed to decode encounter order for tier %s: %w", row.ID, err)
	}

	var names map[int]string
	if err := json.Unmarshal([]byte(row.EncounterNames), &names); err != nil {
		return nil, fmt.Errorf("failed to decode encounter names for tier %s: %w", row.ID, err)
	}

	return &domain.TierConfig{
		ID:             row.ID,
		ZoneID:         int(row.ZoneID),
		ZoneName:       row.ZoneName,
		EncounterOrder: order,
		EncounterNames: names,
		IsActive:       row.IsActive,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}, nil
}
