package service

import (
	"context"
	"strings"
	"time"
	"wcl-enricher/internal/api"
	"wcl-enricher/internal/config"
	"wcl-enricher/internal/constants"
	"wcl-enricher/internal/domain"
	"wcl-enricher/internal/identity"
	"wcl-enricher/internal/metrics"
	"wcl-enricher/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Upstream is the subset of the Warcraft Logs client the services depend on.
type Upstream interface {
	Configured() bool
	FetchByName(ctx context.Context, region domain.Region, realm, name string) (*api.NormalizedCharacter, error)
	FetchByID(ctx context.Context, id string) (*api.NormalizedCharacter, error)
	FetchZoneEncounters(ctx context.Context, zoneID int) (*api.Zone, error)
	FetchZoneProgression(ctx context.Context, region domain.Region, realm, name string, zoneID int) (*api.ZoneProgression, error)
}

type CacheStore interface {
	Find(ctx context.Context, key repository.CacheKey) (*domain.CacheEntry, error)
	FindAllSeasons(ctx context.Context, region domain.Region, realm, name string) ([]domain.CacheEntry, error)
	Upsert(ctx context.Context, data repository.CacheUpsert) error
	Delete(ctx context.Context, key repository.CacheKey) (bool, error)
	IsStale(entry *domain.CacheEntry, maxAge time.Duration) bool
}

type ActiveTierSource interface {
	Active(ctx context.Context) (*domain.TierConfig, error)
}

type EnrichRequest struct {
	WarcraftLogsURL string `json:"warcraftLogsUrl"`
	SeasonKey       string `json:"seasonKey,omitempty"`
	ForceRefresh    bool   `json:"forceRefresh,omitempty"`
}

type Source string

const (
	SourceCache      Source = "cache"
	SourceUpstream   Source = "upstream"
	SourceStaleCache Source = "stale-cache"
)

// EnrichResult is a successful enrichment. Degraded results carry cached data
// and an advisory Message.
type EnrichResult struct {
	Card     domain.PlayerCard `json:"card"`
	Message  string            `json:"message,omitempty"`
	Degraded bool              `json:"degraded"`
	Source   Source            `json:"source"`
}

type EnrichService struct {
	upstream Upstream
	cache    CacheStore
	tiers    ActiveTierSource
	maxAge   time.Duration
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	now      func() time.Time
}

func NewEnrichService(upstream Upstream, cache CacheStore, tiers ActiveTierSource, cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) *EnrichService {
	return &EnrichService{
		upstream: upstream,
		cache:    cache,
		tiers:    tiers,
		maxAge:   cfg.CacheMaxAge,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Enrich resolves the profile URL in req to a player card, serving cache when
// it is fresh, refreshing from Warcraft Logs otherwise, and falling back to
// cached data whenever the upstream cannot answer.
func (s *EnrichService) Enrich(ctx context.Context, req EnrichRequest) (*EnrichResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	profileURL := strings.TrimSpace(req.WarcraftLogsURL)
	ref, err := identity.Parse(profileURL)
	if err != nil {
		s.metrics.ObserveEnrich("invalid_input")
		return nil, err
	}

	configured := s.upstream.Configured()

	var ident domain.ResolvedIdentity
	var prefetched *api.NormalizedCharacter
	if ref.IsNumeric() {
		if !configured {
			s.metrics.ObserveEnrich("unavailable")
			return nil, domain.NewError(domain.KindServiceUnavailable, "Warcraft Logs is not configured; character ids cannot be resolved")
		}

		character, err := s.upstream.FetchByID(ctx, ref.NumericID)
		if err != nil {
			s.logger.Warn().Err(err).Str("character_id", ref.NumericID).Msg("failed to resolve character id")
			s.metrics.ObserveEnrich("bad_gateway")
			return nil, gatewayError(err)
		}
		ident = character.Identity
		prefetched = character
		s.logger.Debug().
			Str("character_id", ref.NumericID).
			Str("region", string(ident.Region)).
			Str("realm", ident.Realm).
			Str("name", ident.CharacterName).
			Msg("resolved character id")
	} else {
		ident = *ref.Slug
	}

	key := repository.KeyFor(ident, req.SeasonKey)
	log := s.logger.With().
		Str("region", string(ident.Region)).
		Str("realm", ident.Realm).
		Str("name", ident.CharacterName).
		Str("season", key.SeasonKey).
		Logger()

	var cached *domain.CacheEntry
	if req.ForceRefresh {
		s.metrics.ObserveCacheLookup("skipped")
		log.Debug().Msg("force refresh requested, skipping cache")
	} else {
		cached = s.lookup(ctx, key, log)
		if usable(cached) && !s.cache.IsStale(cached, s.maxAge) {
			s.metrics.ObserveCacheLookup("fresh")
			s.metrics.ObserveEnrich("cache")
			log.Info().Msg("returning cached player card")

			card := *cached.Card
			card.WarcraftLogsURL = profileURL
			return &EnrichResult{Card: card, Source: SourceCache}, nil
		}
		if cached != nil {
			s.metrics.ObserveCacheLookup("stale")
		} else {
			s.metrics.ObserveCacheLookup("missing")
		}
	}

	if !configured {
		if cached == nil && req.ForceRefresh {
			cached = s.lookup(ctx, key, log)
		}
		if usable(cached) {
			log.Warn().Msg("warcraft logs not configured, returning stale player card")
			s.metrics.ObserveEnrich("degraded")

			card := *cached.Card
			card.WarcraftLogsURL = profileURL
			return &EnrichResult{
				Card:     card,
				Message:  constants.DegradedUnconfiguredMessage,
				Degraded: true,
				Source:   SourceStaleCache,
			}, nil
		}
		s.metrics.ObserveEnrich("unavailable")
		return nil, domain.NewError(domain.KindServiceUnavailable, "Warcraft Logs is not configured and no cached data is available")
	}

	character, bestKill, err := s.fetch(ctx, ident, prefetched, log)
	if err != nil {
		if cached == nil && req.ForceRefresh {
			cached = s.lookup(ctx, key, log)
		}
		return s.fetchFailed(ctx, key, cached, profileURL, err, log)
	}

	now := s.now().UTC()
	card := buildCard(character, bestKill, profileURL, now)
	status := domain.FetchStatusComplete
	if err := s.cache.Upsert(ctx, repository.CacheUpsert{
		Key:               key,
		Card:              &card,
		WCLFetchedAt:      &now,
		FetchStatus:       &status,
		ClearErrorMessage: true,
	}); err != nil {
		log.Error().Err(err).Msg("failed to persist player card")
	}

	s.metrics.ObserveEnrich("upstream")
	log.Info().Bool("best_kill", bestKill != nil).Msg("player card refreshed from warcraft logs")
	return &EnrichResult{Card: card, Source: SourceUpstream}, nil
}

// lookup reads the cache entry for key. Read failures are logged and treated
// as a miss.
func (s *EnrichService) lookup(ctx context.Context, key repository.CacheKey, log zerolog.Logger) *domain.CacheEntry {
	entry, err := s.cache.Find(ctx, key)
	if err != nil {
		s.metrics.ObserveCacheLookup("error")
		log.Warn().Err(err).Msg("failed to read character cache, continuing without it")
		return nil
	}
	return entry
}

// fetch loads the character (unless already resolved) and, alongside it, the
// active tier best kill. Only the character fetch can fail the call.
func (s *EnrichService) fetch(ctx context.Context, ident domain.ResolvedIdentity, prefetched *api.NormalizedCharacter, log zerolog.Logger) (*api.NormalizedCharacter, *domain.BestKill, error) {
	tier := s.activeTier(ctx, log)

	character := prefetched
	var bestKill *domain.BestKill

	g, gctx := errgroup.WithContext(ctx)
	if character == nil {
		g.Go(func() error {
			c, err := s.upstream.FetchByName(gctx, ident.Region, ident.Realm, ident.CharacterName)
			if err != nil {
				return err
			}
			character = c
			return nil
		})
	}
	if tier != nil {
		g.Go(func() error {
			bestKill = s.tierBestKill(gctx, ident, tier, log)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return character, bestKill, nil
}

func (s *EnrichService) activeTier(ctx context.Context, log zerolog.Logger) *domain.TierConfig {
	if s.tiers == nil {
		return nil
	}
	tier, err := s.tiers.Active(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load active tier, skipping best kill")
		return nil
	}
	if tier == nil {
		log.Debug().Msg("no active tier configured, skipping best kill")
	}
	return tier
}

// tierBestKill never fails: any error is logged and yields no best kill.
func (s *EnrichService) tierBestKill(ctx context.Context, ident domain.ResolvedIdentity, tier *domain.TierConfig, log zerolog.Logger) *domain.BestKill {
	progression, err := s.upstream.FetchZoneProgression(ctx, ident.Region, ident.Realm, ident.CharacterName, tier.ZoneID)
	if err != nil {
		log.Warn().Err(err).Int("zone_id", tier.ZoneID).Msg("failed to fetch tier progression, leaving best kill empty")
		return nil
	}
	return ComputeBestKill(progression, tier.EncounterOrder, tier.EncounterNames)
}

func (s *EnrichService) fetchFailed(ctx context.Context, key repository.CacheKey, cached *domain.CacheEntry, profileURL string, fetchErr error, log zerolog.Logger) (*EnrichResult, error) {
	log.Warn().Err(fetchErr).Str("kind", string(domain.KindOf(fetchErr))).Msg("failed to fetch player from warcraft logs")

	if cached == nil {
		s.metrics.ObserveEnrich("bad_gateway")
		return nil, gatewayError(fetchErr)
	}

	message := domain.MessageOf(fetchErr)
	status := domain.FetchStatusFailed
	update := repository.CacheUpsert{
		Key:          key,
		FetchStatus:  &status,
		ErrorMessage: &message,
	}

	var card domain.PlayerCard
	if usable(cached) {
		card = *cached.Card
		card.FetchStatus = domain.FetchStatusFailed
		card.ErrorMessage = &message
		stored := card
		update.Card = &stored
	}

	if err := s.cache.Upsert(ctx, update); err != nil {
		log.Error().Err(err).Msg("failed to record fetch failure in cache")
	}

	if !usable(cached) {
		s.metrics.ObserveEnrich("bad_gateway")
		return nil, gatewayError(fetchErr)
	}

	card.WarcraftLogsURL = profileURL
	s.metrics.ObserveEnrich("degraded")
	return &EnrichResult{
		Card:     card,
		Message:  constants.DegradedFetchFailedMessage,
		Degraded: true,
		Source:   SourceStaleCache,
	}, nil
}

func (s *EnrichService) CacheEntries(ctx context.Context, region, realm, name string) ([]domain.CacheEntry, error) {
	ident, err := identity.Normalize(region, realm, name)
	if err != nil {
		return nil, err
	}
	return s.cache.FindAllSeasons(ctx, ident.Region, ident.Realm, ident.CharacterName)
}

// EvictCache deletes one cached card. A missing entry is reported as NotFound.
func (s *EnrichService) EvictCache(ctx context.Context, region, realm, name, seasonKey string) error {
	ident, err := identity.Normalize(region, realm, name)
	if err != nil {
		return err
	}

	key := repository.KeyFor(ident, seasonKey)
	deleted, err := s.cache.Delete(ctx, key)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.NewError(domain.KindNotFound, "no cached card for that character and season")
	}

	s.logger.Info().
		Str("region", string(ident.Region)).
		Str("realm", ident.Realm).
		Str("name", ident.CharacterName).
		Str("season", key.SeasonKey).
		Msg("cache entry evicted")
	return nil
}

func usable(entry *domain.CacheEntry) bool {
	return entry != nil && entry.Card != nil
}

// gatewayError maps an upstream failure with no cache to fall back on.
func gatewayError(err error) error {
	switch domain.KindOf(err) {
	case domain.KindCharacterNotFound:
		return domain.WrapError(domain.KindBadGateway, constants.CharacterNotFoundHint, err)
	case domain.KindConfigMissing:
		return domain.WrapError(domain.KindServiceUnavailable, "Warcraft Logs is not configured", err)
	case domain.KindInvalidInput:
		return err
	case domain.KindAuthFailed, domain.KindRequestFailed, domain.KindUpstreamError:
		return domain.WrapError(domain.KindBadGateway, "Warcraft Logs request failed: "+domain.MessageOf(err), err)
	}
	return domain.WrapError(domain.KindBadGateway, "Failed to fetch data from Warcraft Logs", err)
}

func buildCard(character *api.NormalizedCharacter, bestKill *domain.BestKill, profileURL string, now time.Time) domain.PlayerCard {
	id := character.ID
	card := domain.PlayerCard{
		CharacterName:   character.Identity.CharacterName,
		Realm:           character.Identity.Realm,
		Region:          character.Identity.Region,
		CharacterID:     &id,
		BestKill:        bestKill,
		TopRanking:      character.TopRanking,
		FetchStatus:     domain.FetchStatusComplete,
		WarcraftLogsURL: profileURL,
		UpdatedAt:       now,
	}

	if character.ClassName != "" {
		class := character.ClassName
		card.Class = &class
	}
	if character.Spec != "" {
		spec := api.SpecDisplayName(character.Spec)
		card.Spec = &spec
		role := character.Role
		card.Role = &role
		if card.Class != nil {
			classSpec := spec + " " + *card.Class
			card.ClassSpec = &classSpec
		}
	}
	return card
}
