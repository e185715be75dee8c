package domain

import (
	"time"
)

// LatestSeason is the season key used when a caller does not name one.
const LatestSeason = "latest"

type Region string

const (
	RegionUS Region = "US"
	RegionEU Region = "EU"
	RegionKR Region = "KR"
	RegionTW Region = "TW"
	RegionCN Region = "CN"
)

var Regions = []Region{RegionUS, RegionEU, RegionKR, RegionTW, RegionCN}

func (r Region) Valid() bool {
	for _, v := range Regions {
		if r == v {
			return true
		}
	}
	return false
}

// ResolvedIdentity keys a character in both the upstream and the local cache.
// Fields are always normalized before use.
type ResolvedIdentity struct {
	Region        Region `json:"region"`
	Realm         string `json:"realm"`
	CharacterName string `json:"characterName"`
}

// RawIdentityReference is what the parser produced from a profile URL: either a
// slug triple or an upstream numeric character id, never both.
type RawIdentityReference struct {
	Slug      *ResolvedIdentity
	NumericID string
}

func (r RawIdentityReference) IsNumeric() bool {
	return r.Slug == nil && r.NumericID != ""
}

type FetchStatus string

const (
	FetchStatusComplete FetchStatus = "complete"
	FetchStatusPartial  FetchStatus = "partial"
	FetchStatusFailed   FetchStatus = "failed"
)

func (s FetchStatus) Valid() bool {
	switch s {
	case FetchStatusComplete, FetchStatusPartial, FetchStatusFailed:
		return true
	}
	return false
}

type Role string

const (
	RoleTank   Role = "Tank"
	RoleHealer Role = "Healer"
	RoleDPS    Role = "DPS"
)

type BestKill struct {
	BossID              int        `json:"bossId"`
	BossName            string     `json:"bossName"`
	Difficulty          Difficulty `json:"difficulty"`
	EncounterOrderIndex int        `json:"encounterOrderIndex"`
}

// TopRanking is the single highest-percentile ranking across every zone the
// upstream reported, regardless of the active tier.
type TopRanking struct {
	EncounterID   int        `json:"encounterId"`
	EncounterName string     `json:"encounterName"`
	Difficulty    Difficulty `json:"difficulty"`
	RankPercent   float64    `json:"rankPercent"`
	Spec          string     `json:"spec,omitempty"`
}

// PlayerCard is the enriched, externally visible view of a character.
type PlayerCard struct {
	CharacterName   string      `json:"characterName"`
	Realm           string      `json:"realm"`
	Region          Region      `json:"region"`
	CharacterID     *int64      `json:"characterId"`
	Class           *string     `json:"class"`
	Spec            *string     `json:"spec"`
	ClassSpec       *string     `json:"classSpec"`
	Role            *Role       `json:"role"`
	BestKill        *BestKill   `json:"bestKill"`
	TopRanking      *TopRanking `json:"topRanking"`
	AvatarURL       *string     `json:"avatarUrl"`
	FetchStatus     FetchStatus `json:"fetchStatus"`
	ErrorMessage    *string     `json:"errorMessage"`
	WarcraftLogsURL string      `json:"warcraftLogsUrl"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

func (c PlayerCard) Identity() ResolvedIdentity {
	return ResolvedIdentity{Region: c.Region, Realm: c.Realm, CharacterName: c.CharacterName}
}

type CacheEntry struct {
	ID            string
	Region        Region
	Realm         string
	CharacterName string
	SeasonKey     string
	Card          *PlayerCard
	WCLFetchedAt  *time.Time
	FetchStatus   FetchStatus
	ErrorMessage  *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type TierConfig struct {
	ID             string         `json:"id"`
	ZoneID         int            `json:"zoneId"`
	ZoneName       string         `json:"zoneName"`
	EncounterOrder []int          `json:"encounterOrder"`
	EncounterNames map[int]string `json:"encounterNames"`
	IsActive       bool           `json:"isActive"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}
