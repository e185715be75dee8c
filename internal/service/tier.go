package service

import (
	"context"
	"fmt"
	"wcl-enricher/internal/constants"
	"wcl-enricher/internal/domain"

	"github.com/rs/zerolog"
)

type TierStore interface {
	Create(ctx context.Context, tier domain.TierConfig) (*domain.TierConfig, error)
	Get(ctx context.Context, id string) (*domain.TierConfig, error)
	Active(ctx context.Context) (*domain.TierConfig, error)
	List(ctx context.Context) ([]domain.TierConfig, error)
	Activate(ctx context.Context, id string) (bool, error)
}

type TierService struct {
	upstream Upstream
	repo     TierStore
	logger   zerolog.Logger
}

func NewTierService(upstream Upstream, repo TierStore, logger zerolog.Logger) *TierService {
	return &TierService{upstream: upstream, repo: repo, logger: logger}
}

// Import builds a tier config from the zone's encounter list on Warcraft Logs,
// keeping the upstream encounter order, and optionally activates it.
func (s *TierService) Import(ctx context.Context, zoneID int, activate bool) (*domain.TierConfig, error) {
	if zoneID <= 0 {
		return nil, domain.NewError(domain.KindInvalidInput, "zone id must be a positive number")
	}
	if !s.upstream.Configured() {
		return nil, domain.NewError(domain.KindServiceUnavailable, "Warcraft Logs is not configured; tiers cannot be imported")
	}

	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	zone, err := s.upstream.FetchZoneEncounters(ctx, zoneID)
	if err != nil {
		s.logger.Error().Err(err).Int("zone_id", zoneID).Msg("failed to fetch zone encounters")
		if domain.IsKind(err, domain.KindZoneNotFound) {
			return nil, domain.WrapError(domain.KindNotFound, fmt.Sprintf("zone %d not found on Warcraft Logs", zoneID), err)
		}
		return nil, gatewayError(err)
	}
	if len(zone.Encounters) == 0 {
		return nil, domain.NewError(domain.KindInvalidInput, fmt.Sprintf("zone %d has no encounters", zoneID))
	}

	tier := domain.TierConfig{
		ZoneID:         zone.ID,
		ZoneName:       zone.Name,
		EncounterOrder: make([]int, 0, len(zone.Encounters)),
		EncounterNames: make(map[int]string, len(zone.Encounters)),
	}
	for _, e := range zone.Encounters {
		tier.EncounterOrder = append(tier.EncounterOrder, e.ID)
		tier.EncounterNames[e.ID] = e.Name
	}

	created, err := s.repo.Create(ctx, tier)
	if err != nil {
		return nil, fmt.Errorf("failed to store tier config: %w", err)
	}

	s.logger.Info().
		Str("tier_id", created.ID).
		Int("zone_id", created.ZoneID).
		Str("zone_name", created.ZoneName).
		Int("encounters", len(created.EncounterOrder)).
		Msg("tier config imported")

	if !activate {
		return created, nil
	}
	return s.Activate(ctx, created.ID)
}

// Activate makes id the only active tier.
func (s *TierService) Activate(ctx context.Context, id string) (*domain.TierConfig, error) {
	ok, err := s.repo.Activate(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NewError(domain.KindNotFound, fmt.Sprintf("tier config %q not found", id))
	}
	return s.repo.Get(ctx, id)
}

// Active returns the active tier or nil when none is active.
func (s *TierService) Active(ctx context.Context) (*domain.TierConfig, error) {
	return s.repo.Active(ctx)
}

func (s *TierService) List(ctx context.Context) ([]domain.TierConfig, error) {
	return s.repo.List(ctx)
}
