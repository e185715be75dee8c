package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"wcl-enricher/internal/domain"
	"wcl-enricher/internal/identity"
)

// NormalizedCharacter is the upstream character reduced to what a player card
// needs.
type NormalizedCharacter struct {
	ID         int64
	Identity   domain.ResolvedIdentity
	RealmName  string
	ClassID    int
	ClassName  string
	Spec       string
	Role       domain.Role
	TopRanking *domain.TopRanking
}

type Encounter struct {
	ID   int
	Name string
}

type Zone struct {
	ID         int
	Name       string
	Encounters []Encounter
}

type Kill struct {
	Difficulty domain.Difficulty
}

type EncounterProgression struct {
	ID    int
	Name  string
	Kills []Kill
}

type ZoneProgression struct {
	ZoneID     int
	Encounters []EncounterProgression
}

// Normalize flattens the per-zone rankings of raw, picks the most played
// spec and the single best ranking, and resolves the class name.
func Normalize(raw *rawCharacter) (*NormalizedCharacter, error) {
	region := domain.Region(strings.ToUpper(raw.Server.Region.Slug))
	if !region.Valid() {
		return nil, domain.NewError(domain.KindRequestFailed, fmt.Sprintf("warcraft logs returned unknown region %q", raw.Server.Region.Slug))
	}

	realm := strings.ToLower(raw.Server.Slug)
	if realm == "" {
		realm = identity.SlugifyRealm(raw.Server.Name)
	}

	payloads, err := decodeZonePayloads(raw.ZoneRankings)
	if err != nil {
		return nil, domain.WrapError(domain.KindRequestFailed, "failed to decode zone rankings", err)
	}

	var rankings []rankingEntry
	var difficulties []int
	for _, p := range payloads {
		for _, r := range p.Rankings {
			rankings = append(rankings, r)
			difficulties = append(difficulties, p.Difficulty)
		}
	}

	character := &NormalizedCharacter{
		ID: raw.ID,
		Identity: domain.ResolvedIdentity{
			Region:        region,
			Realm:         realm,
			CharacterName: identity.NormalizeName(raw.Name),
		},
		RealmName: raw.Server.Name,
		ClassID:   raw.ClassID,
		Spec:      mostPlayedSpec(rankings),
	}
	if name, ok := ClassName(raw.ClassID); ok {
		character.ClassName = name
	}
	if character.Spec != "" {
		character.Role = SpecRole(character.Spec)
	}

	if i := bestRanking(rankings); i >= 0 {
		r := rankings[i]
		character.TopRanking = &domain.TopRanking{
			EncounterID:   r.Encounter.ID,
			EncounterName: r.Encounter.Name,
			Difficulty:    domain.DifficultyFromCode(difficulties[i]),
			RankPercent:   *r.RankPercent,
			Spec:          r.Spec,
		}
	}

	return character, nil
}

// mostPlayedSpec counts spec occurrences; the first spec seen wins ties.
func mostPlayedSpec(rankings []rankingEntry) string {
	counts := make(map[string]int)
	var order []string
	for _, r := range rankings {
		if r.Spec == "" {
			continue
		}
		if counts[r.Spec] == 0 {
			order = append(order, r.Spec)
		}
		counts[r.Spec]++
	}

	best, bestCount := "", 0
	for _, spec := range order {
		if counts[spec] > bestCount {
			best, bestCount = spec, counts[spec]
		}
	}
	return best
}

// bestRanking returns the index of the highest rankPercent, first seen on
// ties, or -1 when no entry has one.
func bestRanking(rankings []rankingEntry) int {
	best := -1
	for i, r := range rankings {
		if r.RankPercent == nil {
			continue
		}
		if best < 0 || *r.RankPercent > *rankings[best].RankPercent {
			best = i
		}
	}
	return best
}

func decodeZonePayloads(raw json.RawMessage) ([]zoneRankingPayload, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var list []zoneRankingPayload
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var single zoneRankingPayload
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return nil, err
	}
	return []zoneRankingPayload{single}, nil
}

var progressionDifficulties = []domain.Difficulty{
	domain.DifficultyNormal,
	domain.DifficultyHeroic,
	domain.DifficultyMythic,
}

func buildProgression(zoneID int, byDifficulty map[domain.Difficulty]json.RawMessage) (*ZoneProgression, error) {
	progression := &ZoneProgression{ZoneID: zoneID}
	index := make(map[int]int)
	found := false

	for _, difficulty := range progressionDifficulties {
		payloads, err := decodeZonePayloads(byDifficulty[difficulty])
		if err != nil {
			return nil, domain.WrapError(domain.KindRequestFailed, "failed to decode zone progression", err)
		}
		for _, p := range payloads {
			if p.Error != "" {
				return nil, domain.NewError(domain.KindZoneNotFound, fmt.Sprintf("zone %d: %s", zoneID, p.Error))
			}
			found = true
			for _, r := range p.Rankings {
				i, ok := index[r.Encounter.ID]
				if !ok {
					i = len(progression.Encounters)
					index[r.Encounter.ID] = i
					progression.Encounters = append(progression.Encounters, EncounterProgression{
						ID:   r.Encounter.ID,
						Name: r.Encounter.Name,
					})
				}
				if r.TotalKills > 0 {
					progression.Encounters[i].Kills = append(progression.Encounters[i].Kills, Kill{Difficulty: difficulty})
				}
			}
		}
	}

	if !found {
		return nil, domain.NewError(domain.KindZoneNotFound, fmt.Sprintf("zone %d has no rankings on warcraft logs", zoneID))
	}
	return progression, nil
}
