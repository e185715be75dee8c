// Package adminv1 defines the wclcard.v1.AdminService messages and its
// Connect handler and client.
package adminv1

import (
	"time"
	"wcl-enricher/internal/domain"
)

type EnrichRequest struct {
	WarcraftLogsURL string `json:"warcraftLogsUrl"`
	SeasonKey       string `json:"seasonKey,omitempty"`
	ForceRefresh    bool   `json:"forceRefresh,omitempty"`
}

type EnrichResponse struct {
	Card     domain.PlayerCard `json:"card"`
	Message  string            `json:"message,omitempty"`
	Degraded bool              `json:"degraded"`
	Source   string            `json:"source"`
}

type ListCacheEntriesRequest struct {
	Region        string `json:"region"`
	Realm         string `json:"realm"`
	CharacterName string `json:"characterName"`
}

type CacheEntry struct {
	SeasonKey    string             `json:"seasonKey"`
	FetchStatus  domain.FetchStatus `json:"fetchStatus"`
	ErrorMessage *string            `json:"errorMessage,omitempty"`
	WCLFetchedAt *time.Time         `json:"wclFetchedAt,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
	Card         *domain.PlayerCard `json:"card,omitempty"`
}

type ListCacheEntriesResponse struct {
	Entries []CacheEntry `json:"entries"`
}

type DeleteCacheEntryRequest struct {
	Region        string `json:"region"`
	Realm         string `json:"realm"`
	CharacterName string `json:"characterName"`
	SeasonKey     string `json:"seasonKey,omitempty"`
}

type DeleteCacheEntryResponse struct{}

type ImportTierRequest struct {
	ZoneID   int  `json:"zoneId"`
	Activate bool `json:"activate"`
}

type ActivateTierRequest struct {
	ID string `json:"id"`
}

type ListTiersRequest struct{}

type ListTiersResponse struct {
	Tiers []domain.TierConfig `json:"tiers"`
}

type GetActiveTierRequest struct{}

// TierResponse carries a single tier; Tier is nil when there is no active one.
type TierResponse struct {
	Tier *domain.TierConfig `json:"tier"`
}
