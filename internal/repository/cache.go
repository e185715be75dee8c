package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"wcl-enricher/internal/constants"
	"wcl-enricher/internal/db"
	"wcl-enricher/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// CacheKey addresses one cached card. An empty SeasonKey means domain.LatestSeason.
type CacheKey struct {
	Region        domain.Region
	Realm         string
	CharacterName string
	SeasonKey     string
}

func KeyFor(ident domain.ResolvedIdentity, seasonKey string) CacheKey {
	if seasonKey == "" {
		seasonKey = domain.LatestSeason
	}
	return CacheKey{
		Region:        ident.Region,
		Realm:         ident.Realm,
		CharacterName: ident.CharacterName,
		SeasonKey:     seasonKey,
	}
}

func (k CacheKey) season() string {
	if k.SeasonKey == "" {
		return domain.LatestSeason
	}
	return k.SeasonKey
}

// CacheUpsert carries the fields to write. Nil fields keep their stored value
// on update; ErrorMessage is cleared only when ClearErrorMessage is set.
type CacheUpsert struct {
	Key               CacheKey
	Card              *domain.PlayerCard
	WCLFetchedAt      *time.Time
	FetchStatus       *domain.FetchStatus
	ErrorMessage      *string
	ClearErrorMessage bool
}

var ErrUnsupportedCardVersion = errors.New("unsupported player card payload version")

type cardEnvelope struct {
	Version int               `json:"v"`
	Card    domain.PlayerCard `json:"card"`
}

type CacheRepository struct {
	queries *db.Queries
	logger  zerolog.Logger
	now     func() time.Time
}

func NewCacheRepository(queries *db.Queries, logger zerolog.Logger) *CacheRepository {
	return &CacheRepository{
		queries: queries,
		logger:  logger,
		now:     time.Now,
	}
}

func (r *CacheRepository) Find(ctx context.Context, key CacheKey) (*domain.CacheEntry, error) {
	row, err := r.queries.GetCharacterCache(ctx, db.GetCharacterCacheParams{
		Region:        string(key.Region),
		Realm:         key.Realm,
		CharacterName: key.CharacterName,
		SeasonKey:     key.season(),
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.WrapError(domain.KindCacheReadFailed, "failed to read character cache", err)
	}

	entry, err := toCacheEntry(row)
	if err != nil {
		return nil, domain.WrapError(domain.KindCacheReadFailed, "failed to decode character cache", err)
	}
	return entry, nil
}

func (r *CacheRepository) FindAllSeasons(ctx context.Context, region domain.Region, realm, name string) ([]domain.CacheEntry, error) {
	rows, err := r.queries.ListCharacterCacheSeasons(ctx, db.ListCharacterCacheSeasonsParams{
		Region:        string(region),
		Realm:         realm,
		CharacterName: name,
	})
	if err != nil {
		return nil, domain.WrapError(domain.KindCacheReadFailed, "failed to list character cache", err)
	}

	result := make([]domain.CacheEntry, 0, len(rows))
	for _, row := range rows {
		entry, err := toCacheEntry(row)
		if err != nil {
			r.logger.Warn().Err(err).Str("id", row.ID).Msg("skipping undecodable cache row")
			continue
		}
		result = append(result, *entry)
	}
	return result, nil
}

// Upsert inserts the row when absent and otherwise updates only the supplied
// fields. updated_at is always refreshed.
func (r *CacheRepository) Upsert(ctx context.Context, data CacheUpsert) error {
	id, err := gonanoid.New()
	if err != nil {
		return domain.WrapError(domain.KindCacheWriteFailed, "failed to generate cache id", err)
	}

	params := db.UpsertCharacterCacheParams{
		ID:            id,
		Region:        string(data.Key.Region),
		Realm:         data.Key.Realm,
		CharacterName: data.Key.CharacterName,
		SeasonKey:     data.Key.season(),
		UpdatedAt:     r.now().UTC(),
	}

	if data.Card != nil {
		payload, err := encodeCard(data.Card)
		if err != nil {
			return domain.WrapError(domain.KindCacheWriteFailed, "failed to encode player card", err)
		}
		params.PlayerCard = sql.NullString{String: payload, Valid: true}
	}
	if data.WCLFetchedAt != nil {
		params.WclLastFetchedAt = sql.NullTime{Time: data.WCLFetchedAt.UTC(), Valid: true}
	}
	if data.FetchStatus != nil {
		params.FetchStatus = sql.NullString{String: string(*data.FetchStatus), Valid: true}
	}
	switch {
	case data.ErrorMessage != nil:
		params.ErrorMessage = sql.NullString{String: *data.ErrorMessage, Valid: true}
		params.SetErrorMessage = true
	case data.ClearErrorMessage:
		params.SetErrorMessage = true
	}

	if err := r.queries.UpsertCharacterCache(ctx, params); err != nil {
		r.logger.Error().Err(err).
			Str("region", params.Region).
			Str("realm", params.Realm).
			Str("character", params.CharacterName).
			Str("season", params.SeasonKey).
			Msg("failed to upsert character cache")
		return domain.WrapError(domain.KindCacheWriteFailed, "failed to write character cache", err)
	}
	return nil
}

func (r *CacheRepository) Delete(ctx context.Context, key CacheKey) (bool, error) {
	n, err := r.queries.DeleteCharacterCache(ctx, db.DeleteCharacterCacheParams{
		Region:        string(key.Region),
		Realm:         key.Realm,
		CharacterName: key.CharacterName,
		SeasonKey:     key.season(),
	})
	if err != nil {
		return false, domain.WrapError(domain.KindCacheWriteFailed, "failed to delete character cache", err)
	}
	return n > 0, nil
}

func (r *CacheRepository) IsStale(entry *domain.CacheEntry, maxAge time.Duration) bool {
	stale := IsStale(entry, maxAge, r.now())
	if entry != nil {
		r.logger.Debug().
			Time("updated_at", entry.UpdatedAt).
			Dur("age", r.now().Sub(entry.UpdatedAt)).
			Dur("max_age", maxAge).
			Bool("stale", stale).
			Msg("checking cache staleness")
	}
	return stale
}

// IsStale reports whether entry is missing or at least maxAge old at now.
func IsStale(entry *domain.CacheEntry, maxAge time.Duration, now time.Time) bool {
	if entry == nil {
		return true
	}
	return now.Sub(entry.UpdatedAt) >= maxAge
}

func toCacheEntry(row db.CharacterCache) (*domain.CacheEntry, error) {
	entry := &domain.CacheEntry{
		ID:            row.ID,
		Region:        domain.Region(row.Region),
		Realm:         row.Realm,
		CharacterName: row.CharacterName,
		SeasonKey:     row.SeasonKey,
		FetchStatus:   domain.FetchStatus(row.FetchStatus),
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if row.WclLastFetchedAt.Valid {
		t := row.WclLastFetchedAt.Time
		entry.WCLFetchedAt = &t
	}
	if row.ErrorMessage.Valid {
		msg := row.ErrorMessage.String
		entry.ErrorMessage = &msg
	}
	if row.PlayerCard.Valid && row.PlayerCard.String != "" {
		card, err := decodeCard(row.PlayerCard.String)
		if err != nil {
			return nil, err
		}
		entry.Card = card
	}
	return entry, nil
}

func encodeCard(card *domain.PlayerCard) (string, error) {
	b, err := json.Marshal(cardEnvelope{Version: constants.CardPayloadVersion, Card: *card})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeCard(payload string) (*domain.PlayerCard, error) {
	var env cardEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player card: %w", err)
	}
	if env.Version != constants.CardPayloadVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedCardVersion, env.Version)
	}
	return &env.Card, nil
}
