package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	"wcl-enricher/internal/api"
	"wcl-enricher/internal/config"
	"wcl-enricher/internal/constants"
	"wcl-enricher/internal/domain"
	"wcl-enricher/internal/metrics"
	"wcl-enricher/internal/repository"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeUpstream struct {
	mu sync.Mutex

	configured     bool
	character      *api.NormalizedCharacter
	characterErr   error
	byID           map[string]*api.NormalizedCharacter
	zone           *api.Zone
	zoneErr        error
	progression    *api.ZoneProgression
	progressionErr error

	nameCalls        int
	idCalls          int
	progressionCalls int
}

func (f *fakeUpstream) Configured() bool { return f.configured }

func (f *fakeUpstream) FetchByName(_ context.Context, region domain.Region, realm, name string) (*api.NormalizedCharacter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nameCalls++
	if f.characterErr != nil {
		return nil, f.characterErr
	}
	return f.character, nil
}

func (f *fakeUpstream) FetchByID(_ context.Context, id string) (*api.NormalizedCharacter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.idCalls++
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return nil, domain.NewError(domain.KindCharacterNotFound, "character not found on warcraft logs")
}

func (f *fakeUpstream) FetchZoneEncounters(_ context.Context, zoneID int) (*api.Zone, error) {
	if f.zoneErr != nil {
		return nil, f.zoneErr
	}
	return f.zone, nil
}

func (f *fakeUpstream) FetchZoneProgression(_ context.Context, region domain.Region, realm, name string, zoneID int) (*api.ZoneProgression, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progressionCalls++
	if f.progressionErr != nil {
		return nil, f.progressionErr
	}
	return f.progression, nil
}

// fakeCache mirrors the partial-update semantics of the SQLite cache.
type fakeCache struct {
	entries map[repository.CacheKey]*domain.CacheEntry
	upserts   []repository.CacheUpsert
	findErr   error
	upsertErr error
	now     time.Time
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[repository.CacheKey]*domain.CacheEntry), now: testNow}
}

func (f *fakeCache) seed(key repository.CacheKey, card domain.PlayerCard, age time.Duration) {
	f.entries[key] = &domain.CacheEntry{
		Region:        key.Region,
		Realm:         key.Realm,
		CharacterName: key.CharacterName,
		SeasonKey:     key.SeasonKey,
		Card:          &card,
		FetchStatus:   card.FetchStatus,
		CreatedAt:     f.now.Add(-age),
		UpdatedAt:     f.now.Add(-age),
	}
}

func (f *fakeCache) Find(_ context.Context, key repository.CacheKey) (*domain.CacheEntry, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	entry, ok := f.entries[key]
	if !ok {
		return nil, nil
	}
	copied := *entry
	return &copied, nil
}

func (f *fakeCache) FindAllSeasons(_ context.Context, region domain.Region, realm, name string) ([]domain.CacheEntry, error) {
	var out []domain.CacheEntry
	for k, e := range f.entries {
		if k.Region == region && k.Realm == realm && k.CharacterName == name {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeCache) Upsert(_ context.Context, data repository.CacheUpsert) error {
	f.upserts = append(f.upserts, data)
	if f.upsertErr != nil {
		return f.upsertErr
	}

	entry, ok := f.entries[data.Key]
	if !ok {
		entry = &domain.CacheEntry{
			Region:        data.Key.Region,
			Realm:         data.Key.Realm,
			CharacterName: data.Key.CharacterName,
			SeasonKey:     data.Key.SeasonKey,
			FetchStatus:   domain.FetchStatusComplete,
			CreatedAt:     f.now,
		}
		f.entries[data.Key] = entry
	}
	if data.Card != nil {
		entry.Card = data.Card
	}
	if data.WCLFetchedAt != nil {
		entry.WCLFetchedAt = data.WCLFetchedAt
	}
	if data.FetchStatus != nil {
		entry.FetchStatus = *data.FetchStatus
	}
	if data.ErrorMessage != nil || data.ClearErrorMessage {
		entry.ErrorMessage = data.ErrorMessage
	}
	entry.UpdatedAt = f.now
	return nil
}

func (f *fakeCache) Delete(_ context.Context, key repository.CacheKey) (bool, error) {
	_, ok := f.entries[key]
	delete(f.entries, key)
	return ok, nil
}

func (f *fakeCache) IsStale(entry *domain.CacheEntry, maxAge time.Duration) bool {
	return repository.IsStale(entry, maxAge, f.now)
}

type fakeTiers struct {
	active *domain.TierConfig
	err    error
}

func (f *fakeTiers) Active(context.Context) (*domain.TierConfig, error) {
	return f.active, f.err
}

type enrichFixture struct {
	svc      *EnrichService
	upstream *fakeUpstream
	cache    *fakeCache
	tiers    *fakeTiers
	metrics  *metrics.Metrics
}

func newEnrichFixture(t *testing.T, configured bool) *enrichFixture {
	t.Helper()
	f := &enrichFixture{
		upstream: &fakeUpstream{configured: configured, character: testCharacter()},
		cache:    newFakeCache(),
		tiers:    &fakeTiers{},
		metrics:  metrics.New(),
	}
	f.svc = NewEnrichService(f.upstream, f.cache, f.tiers, &config.Config{CacheMaxAge: 6 * time.Hour}, f.metrics, zerolog.Nop())
	f.svc.now = func() time.Time { return testNow }
	return f
}

func testCharacter() *api.NormalizedCharacter {
	return &api.NormalizedCharacter{
		ID: 64213375,
		Identity: domain.ResolvedIdentity{
			Region:        domain.RegionUS,
			Realm:         "area-52",
			CharacterName: "Testchar",
		},
		RealmName: "Area 52",
		ClassID:   3,
		ClassName: "Hunter",
		Spec:      "BeastMastery",
		Role:      domain.RoleDPS,
		TopRanking: &domain.TopRanking{
			EncounterID:   2902,
			EncounterName: "Ulgrax the Devourer",
			Difficulty:    domain.DifficultyHeroic,
			RankPercent:   97.4,
			Spec:          "BeastMastery",
		},
	}
}

var (
	testURL = "https://www.warcraftlogs.com/character/us/area-52/testchar"
	testKey = repository.CacheKey{Region: domain.RegionUS, Realm: "area-52", CharacterName: "Testchar", SeasonKey: domain.LatestSeason}
)

func cachedCard(name string) domain.PlayerCard {
	class := "Hunter"
	return domain.PlayerCard{
		CharacterName:   name,
		Realm:           "area-52",
		Region:          domain.RegionUS,
		Class:           &class,
		FetchStatus:     domain.FetchStatusComplete,
		WarcraftLogsURL: "https://old.example/url",
		UpdatedAt:       testNow.Add(-10 * time.Hour),
	}
}

func TestEnrich_InvalidURL(t *testing.T) {
	f := newEnrichFixture(t, true)

	_, err := f.svc.Enrich(context.Background(), EnrichRequest{WarcraftLogsURL: "https://example.com/character/us/area-52/testchar"})
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
	assert.Zero(t, f.upstream.nameCalls)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.EnrichRequests.WithLabelValues("invalid_input")))
}

func TestEnrich_NumericIDRequiresUpstream(t *testing.T) {
	f := newEnrichFixture(t, false)

	_, err := f.svc.Enrich(context.Background(), EnrichRequest{WarcraftLogsURL: "https://www.warcraftlogs.com/character/id/64213375"})
	require.Error(t, err)
	assert.Equal(t, domain.KindServiceUnavailable, domain.KindOf(err))
	assert.Zero(t, f.upstream.idCalls)
}

func TestEnrich_NumericIDResolvesCacheKey(t *testing.T) {
	f := newEnrichFixture(t, true)
	resolved := testCharacter()
	resolved.Identity = domain.ResolvedIdentity{Region: domain.RegionUS, Realm: "area-52", CharacterName: "Playername"}
	f.upstream.byID = map[string]*api.NormalizedCharacter{"64213375": resolved}

	result, err := f.svc.Enrich(context.Background(), EnrichRequest{WarcraftLogsURL: "https://www.warcraftlogs.com/character/id/64213375"})
	require.NoError(t, err)

	require.Len(t, f.cache.upserts, 1)
	assert.Equal(t, repository.CacheKey{
		Region:        domain.RegionUS,
		Realm:         "area-52",
		CharacterName: "Playername",
		SeasonKey:     "latest",
	}, f.cache.upserts[0].Key)
	assert.Equal(t, "Playername", result.Card.CharacterName)
	assert.Equal(t, SourceUpstream, result.Source)
	assert.Equal(t, 1, f.upstream.idCalls)
	assert.Zero(t, f.upstream.nameCalls, "the id lookup already returned the character")
}

func TestEnrich_NumericIDNotFound(t *testing.T) {
	f := newEnrichFixture(t, true)

	_, err := f.svc.Enrich(context.Background(), EnrichRequest{WarcraftLogsURL: "https://www.warcraftlogs.com/character/id/1"})
	require.Error(t, err)
	assert.Equal(t, domain.KindBadGateway, domain.KindOf(err))
	assert.Equal(t, constants.CharacterNotFoundHint, domain.MessageOf(err))
}

func TestEnrich_FreshCache(t *testing.T) {
	f := newEnrichFixture(t, true)
	f.cache.seed(testKey, cachedCard("Testchar"), 2*time.Hour)

	result, err := f.svc.Enrich(context.Background(), EnrichRequest{WarcraftLogsURL: testURL})
	require.NoError(t, err)

	assert.Equal(t, SourceCache, result.Source)
	assert.False(t, result.Degraded)
	assert.Empty(t, result.Message)
	assert.Equal(t, testURL, result.Card.WarcraftLogsURL, "url is re-stamped from the request")
	assert.Equal(t, "Hunter", *result.Card.Class)
	assert.Zero(t, f.upstream.nameCalls)
	assert.Empty(t, f.cache.upserts)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CacheLookups.WithLabelValues("fresh")))
}

func TestEnrich_UnconfiguredWithStaleCache(t *testing.T) {
	f := newEnrichFixture(t, false)
	f.cache.seed(testKey, cachedCard("Testchar"), 7*time.Hour)

	result, err := f.svc.Enrich(context.Background(), EnrichRequest{WarcraftLogsURL: testURL})
	require.NoError(t, err)

	assert.True(t, result.Degraded)
	assert.Equal(t, SourceStaleCache, result.Source)
	assert.NotEmpty(t, result.Message)
	assert.Equal(t, "Testchar", result.Card.CharacterName)
	assert.Empty(t, f.cache.upserts)
}

func TestEnrich_UnconfiguredForceRefreshServesStaleCache(t *testing.T) {
	f := newEnrichFixture(t, false)
	f.cache.seed(testKey, cachedCard("Testchar"), 10*time.Hour)

	result, err := f.svc.Enrich(context.Background(), EnrichRequest{WarcraftLogsURL: testURL, ForceRefresh: true})
	require.NoError(t, err)

	assert.True(t, result.Degraded)
	assert.Equal(t, SourceStaleCache, result.Source)
	assert.Equal(t, constants.DegradedUnconfiguredMessage, result.Message)
	assert.Equal(t, testURL, result.Card.WarcraftLogsURL)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CacheLookups.WithLabelValues("skipped")))
	assert.Empty(t, f.cache.upserts)
}

func TestEnrich_UnconfiguredWithoutCache(t *testing.T) {
	f := newEnrichFixture(t, false)

	_, err := f.svc.Enrich(context.Background(), EnrichRequest{WarcraftLogsURL: testURL})
	require.Error(t, err)
	assert.Equal(t, domain.KindServiceUnavailable, domain.KindOf(err))
}

func TestEnrich_StaleCacheRefreshed(t *testing.T) {
	f := newEnrichFixture(t, true)
	f.cache.seed(testKey, cachedCard("Testchar"), 7*time.Hour)
	f.tiers.active = &domain.TierConfig{
		ID:             "tier-1",
		ZoneID:         38,
		EncounterOrder: []int{2902, 2917, 2922},
		EncounterNames: map[int]string{2902: "Ulgrax the Devourer", 2917: "The Bloodbound Horror", 2922: "Queen Ansurek"},
		IsActive:       true,
	}
	f.upstream.progression = &api.ZoneProgression{
		ZoneID: 38,
		Encounters: []api.EncounterProgression{
			{ID: 2902, Name: "Ulgrax", Kills: kills(domain.DifficultyNormal, domain.DifficultyHeroic)},
			{ID: 2917, Name: "Bloodbound", Kills: kills(domain.DifficultyNormal)},
		},
	}

	result, err := f.svc.Enrich(context.Background(), EnrichRequest{WarcraftLogsURL: testURL})
	require.NoError(t, err)

	card := result.Card
	assert.Equal(t, SourceUpstream, result.Source)
	assert.False(t, result.Degraded)
	assert.Equal(t, domain.FetchStatusComplete, card.FetchStatus)
	assert.Equal(t, "Hunter", *card.Class)
	assert.Equal(t, "Beast Mastery", *card.Spec)
	assert.Equal(t, "Beast Mastery Hunter", *card.ClassSpec)
	assert.Equal(t, domain.RoleDPS, *card.Role)
	assert.Equal(t, int64(64213375), *card.CharacterID)
	assert.Nil(t, card.AvatarURL)
	assert.Equal(t, testNow, card.UpdatedAt)
	require.NotNil(t, card.BestKill)
	assert.Equal(t, 2917, card.BestKill.BossID)
	assert.Equal(t, "The Bloodbound Horror", card.BestKill.BossName)
	assert.Equal(t, domain.DifficultyNormal, card.BestKill.Difficulty)
	assert.Equal(t, 1, card.BestKill.EncounterOrderIndex)

	require.Len(t, f.cache.upserts, 1)
	upsert := f.cache.upserts[0]
	assert.Equal(t, testKey, upsert.Key)
	assert.Equal(t, domain.FetchStatusComplete, *upsert.FetchStatus)
	assert.True(t, upsert.ClearErrorMessage)
	assert.Equal(t, testNow, *upsert.WCLFetchedAt)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CacheLookups.WithLabelValues("stale")))
}

func TestEnrich_TierProgressionFailureIsSwallowed(t *testing.T) {
	f := newEnrichFixture(t, true)
	f.tiers.active = &domain.TierConfig{ZoneID: 38, EncounterOrder: []int{2902}}
	f.upstream.progressionErr = domain.NewError(domain.KindZoneNotFound, "zone 38 has no rankings on warcraft logs")

	result, err := f.svc.Enrich(context.Background(), EnrichRequest{WarcraftLogsURL: testURL})
	require.NoError(t, err)
	assert.Nil(t, result.Card.BestKill)
	assert.Equal(t, domain.FetchStatusComplete, result.Card.FetchStatus)
	assert.Equal(t, 1, f.upstream.progressionCalls)
}

func TestEnrich_ActiveTierLookupFailureIsSwallowed(t *testing.T) {
	f := newEnrichFixture(t, true)
	f.tiers.err = errors.New("database is locked")

	result, err := f.svc.Enrich(context.Background(), EnrichRequest{WarcraftLogsURL: testURL})
	require.NoError(t, err)
	assert.Nil(t, result.Card.BestKill)
	assert.Zero(t, f.upstream.progressionCalls)
}

func TestEnrich_CharacterNotFoundWithoutCache(t *testing.T) {
	f := newEnrichFixture(t, true)
	f.upstream.characterErr = domain.NewError(domain.KindCharacterNotFound, "character not found on warcraft logs")

	_, err := f.svc.Enrich(context.Background(), EnrichRequest{WarcraftLogsURL: testURL})
	require.Error(t, err)

	assert.Equal(t, domain.KindBadGateway, domain.KindOf(err))
	assert.Contains(t, domain.MessageOf(err), "Verify the character name, realm and region")
	assert.Empty(t, f.cache.upserts, "no row is created for an identity that never fetched")
	assert.Empty(t, f.cache.entries)
}

func TestEnrich_UpstreamFailureKindsWithoutCache(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind domain.ErrorKind
	}{
		{"auth failed", domain.NewError(domain.KindAuthFailed, "token request failed"), domain.KindBadGateway},
		{"request failed", domain.NewError(domain.KindRequestFailed, "status 500"), domain.KindBadGateway},
		{"upstream error", domain.NewError(domain.KindUpstreamError, "warcraft logs error: boom"), domain.KindBadGateway},
		{"network", domain.NewError(domain.KindNetworkError, "dial tcp"), domain.KindBadGateway},
		{"unclassified", errors.New("something odd"), domain.KindBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEnrichFixture(t, true)
			f.upstream.characterErr = tt.err

			_, err := f.svc.Enrich(context.Background(), EnrichRequest{WarcraftLogsURL: testURL})
			require.Error(t, err)
			assert.Equal(t, tt.kind, domain.KindOf(err))
			assert.True(t, errors.Is(err, tt.err))
		})
	}
}

func TestEnrich_FetchFailureFallsBackToStaleCache(t *testing.T) {
	f := newEnrichFixture(t, true)
	f.cache.seed(testKey, cachedCard("Testchar"), 8*time.Hour)
	f.upstream.characterErr = domain.NewError(domain.KindUpstreamError, "warcraft logs error: Too many requests")

	result, err := f.svc.Enrich(context.Background(), EnrichRequest{WarcraftLogsURL: testURL})
	require.NoError(t, err)

	assert.True(t, result.Degraded)
	assert.Equal(t, SourceStaleCache, result.Source)
	assert.Equal(t, constants.DegradedFetchFailedMessage, result.Message)
	assert.Equal(t, domain.FetchStatusFailed, result.Card.FetchStatus)
	require.NotNil(t, result.Card.ErrorMessage)
	assert.Equal(t, "warcraft logs error: Too many requests", *result.Card.ErrorMessage)
	assert.Equal(t, testURL, result.Card.WarcraftLogsURL)
	assert.Equal(t, testNow.Add(-10*time.Hour), result.Card.UpdatedAt, "card keeps the age of its data")

	require.Len(t, f.cache.upserts, 1)
	upsert := f.cache.upserts[0]
	assert.Equal(t, domain.FetchStatusFailed, *upsert.FetchStatus)
	assert.Equal(t, "warcraft logs error: Too many requests", *upsert.ErrorMessage)
	assert.Nil(t, upsert.WCLFetchedAt, "last successful fetch time is kept")

	stored := f.cache.entries[testKey]
	assert.Equal(t, domain.FetchStatusFailed, stored.FetchStatus)
	assert.Equal(t, domain.FetchStatusFailed, stored.Card.FetchStatus)
}

func TestEnrich_ForceRefreshSkipsFreshCache(t *testing.T) {
	f := newEnrichFixture(t, true)
	f.cache.seed(testKey, cachedCard("Testchar"), time.Minute)

	result, err := f.svc.Enrich(context.Background(), EnrichRequest{WarcraftLogsURL: testURL, ForceRefresh: true})
	require.NoError(t, err)

	assert.Equal(t, SourceUpstream, result.Source)
	assert.Equal(t, 1, f.upstream.nameCalls)
	require.Len(t, f.cache.upserts, 1)
	assert.Equal(t, "Beast Mastery", *f.cache.entries[testKey].Card.Spec)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CacheLookups.WithLabelValues("skipped")))
}

func TestEnrich_ForceRefreshFailureStillFallsBack(t *testing.T) {
	f := newEnrichFixture(t, true)
	f.cache.seed(testKey, cachedCard("Testchar"), time.Minute)
	f.upstream.characterErr = domain.NewError(domain.KindNetworkError, "failed to reach warcraft logs")

	result, err := f.svc.Enrich(context.Background(), EnrichRequest{WarcraftLogsURL: testURL, ForceRefresh: true})
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Equal(t, domain.FetchStatusFailed, f.cache.entries[testKey].FetchStatus)
}

func TestEnrich_CacheReadFailureTreatedAsMiss(t *testing.T) {
	f := newEnrichFixture(t, true)
	f.cache.findErr = domain.NewError(domain.KindCacheReadFailed, "failed to read character cache")

	result, err := f.svc.Enrich(context.Background(), EnrichRequest{WarcraftLogsURL: testURL})
	require.NoError(t, err)
	assert.Equal(t, SourceUpstream, result.Source)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CacheLookups.WithLabelValues("error")))
}

func TestEnrich_CacheWriteFailureIsNotFatal(t *testing.T) {
	t.Run("refresh", func(t *testing.T) {
		f := newEnrichFixture(t, true)
		f.cache.upsertErr = domain.NewError(domain.KindCacheWriteFailed, "failed to write character cache")

		result, err := f.svc.Enrich(context.Background(), EnrichRequest{WarcraftLogsURL: testURL})
		require.NoError(t, err)
		assert.Equal(t, SourceUpstream, result.Source)
		assert.Equal(t, domain.FetchStatusComplete, result.Card.FetchStatus)
		assert.Len(t, f.cache.upserts, 1)
	})

	t.Run("fetch failure", func(t *testing.T) {
		f := newEnrichFixture(t, true)
		f.cache.seed(testKey, cachedCard("Testchar"), 7*time.Hour)
		f.cache.upsertErr = domain.NewError(domain.KindCacheWriteFailed, "failed to write character cache")
		f.upstream.characterErr = domain.NewError(domain.KindNetworkError, "failed to reach warcraft logs")

		result, err := f.svc.Enrich(context.Background(), EnrichRequest{WarcraftLogsURL: testURL})
		require.NoError(t, err)
		assert.True(t, result.Degraded)
		assert.Equal(t, SourceStaleCache, result.Source)
		assert.NotEmpty(t, f.cache.upserts)
	})
}

func TestEnrich_SeasonKeyIsPartOfTheKey(t *testing.T) {
	f := newEnrichFixture(t, true)
	f.cache.seed(testKey, cachedCard("Testchar"), time.Minute)

	result, err := f.svc.Enrich(context.Background(), EnrichRequest{WarcraftLogsURL: testURL, SeasonKey: "tww-s1"})
	require.NoError(t, err)
	assert.Equal(t, SourceUpstream, result.Source)

	seasonKey := testKey
	seasonKey.SeasonKey = "tww-s1"
	assert.Contains(t, f.cache.entries, seasonKey)
}

func TestEvictCache(t *testing.T) {
	f := newEnrichFixture(t, true)
	f.cache.seed(testKey, cachedCard("Testchar"), time.Minute)

	entries, err := f.svc.CacheEntries(context.Background(), "us", "Area-52", "TESTCHAR")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, f.svc.EvictCache(context.Background(), "us", "area-52", "testchar", ""))
	assert.Empty(t, f.cache.entries)

	err = f.svc.EvictCache(context.Background(), "us", "area-52", "testchar", "")
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	err = f.svc.EvictCache(context.Background(), "xx", "area-52", "testchar", "")
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
}
