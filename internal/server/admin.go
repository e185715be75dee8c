package server

import (
	"context"
	"wcl-enricher/internal/domain"
	"wcl-enricher/internal/rpc/adminv1"
	"wcl-enricher/internal/service"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

type Enricher interface {
	Enrich(ctx context.Context, req service.EnrichRequest) (*service.EnrichResult, error)
	CacheEntries(ctx context.Context, region, realm, name string) ([]domain.CacheEntry, error)
	EvictCache(ctx context.Context, region, realm, name, seasonKey string) error
}

type TierManager interface {
	Import(ctx context.Context, zoneID int, activate bool) (*domain.TierConfig, error)
	Activate(ctx context.Context, id string) (*domain.TierConfig, error)
	Active(ctx context.Context) (*domain.TierConfig, error)
	List(ctx context.Context) ([]domain.TierConfig, error)
}

// AdminServer implements adminv1.AdminServiceHandler.
type AdminServer struct {
	enricher Enricher
	tiers    TierManager
	logger   zerolog.Logger
}

func NewAdminServer(enricher Enricher, tiers TierManager, logger zerolog.Logger) *AdminServer {
	return &AdminServer{enricher: enricher, tiers: tiers, logger: logger}
}

func (s *AdminServer) Enrich(ctx context.Context, req *connect.Request[adminv1.EnrichRequest]) (*connect.Response[adminv1.EnrichResponse], error) {
	result, err := s.enricher.Enrich(ctx, service.EnrichRequest{
		WarcraftLogsURL: req.Msg.WarcraftLogsURL,
		SeasonKey:       req.Msg.SeasonKey,
		ForceRefresh:    req.Msg.ForceRefresh,
	})
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&adminv1.EnrichResponse{
		Card:     result.Card,
		Message:  result.Message,
		Degraded: result.Degraded,
		Source:   string(result.Source),
	}), nil
}

func (s *AdminServer) ListCacheEntries(ctx context.Context, req *connect.Request[adminv1.ListCacheEntriesRequest]) (*connect.Response[adminv1.ListCacheEntriesResponse], error) {
	entries, err := s.enricher.CacheEntries(ctx, req.Msg.Region, req.Msg.Realm, req.Msg.CharacterName)
	if err != nil {
		return nil, connectError(err)
	}

	resp := &adminv1.ListCacheEntriesResponse{Entries: make([]adminv1.CacheEntry, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, adminv1.CacheEntry{
			SeasonKey:    e.SeasonKey,
			FetchStatus:  e.FetchStatus,
			ErrorMessage: e.ErrorMessage,
			WCLFetchedAt: e.WCLFetchedAt,
			CreatedAt:    e.CreatedAt,
			UpdatedAt:    e.UpdatedAt,
			Card:         e.Card,
		})
	}
	return connect.NewResponse(resp), nil
}

func (s *AdminServer) DeleteCacheEntry(ctx context.Context, req *connect.Request[adminv1.DeleteCacheEntryRequest]) (*connect.Response[adminv1.DeleteCacheEntryResponse], error) {
	if err := s.enricher.EvictCache(ctx, req.Msg.Region, req.Msg.Realm, req.Msg.CharacterName, req.Msg.SeasonKey); err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&adminv1.DeleteCacheEntryResponse{}), nil
}

func (s *AdminServer) ImportTier(ctx context.Context, req *connect.Request[adminv1.ImportTierRequest]) (*connect.Response[adminv1.TierResponse], error) {
	tier, err := s.tiers.Import(ctx, req.Msg.ZoneID, req.Msg.Activate)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&adminv1.TierResponse{Tier: tier}), nil
}

func (s *AdminServer) ActivateTier(ctx context.Context, req *connect.Request[adminv1.ActivateTierRequest]) (*connect.Response[adminv1.TierResponse], error) {
	if req.Msg.ID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, domain.NewError(domain.KindInvalidInput, "tier id is required"))
	}

	tier, err := s.tiers.Activate(ctx, req.Msg.ID)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&adminv1.TierResponse{Tier: tier}), nil
}

func (s *AdminServer) ListTiers(ctx context.Context, _ *connect.Request[adminv1.ListTiersRequest]) (*connect.Response[adminv1.ListTiersResponse], error) {
	tiers, err := s.tiers.List(ctx)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&adminv1.ListTiersResponse{Tiers: tiers}), nil
}

func (s *AdminServer) GetActiveTier(ctx context.Context, _ *connect.Request[adminv1.GetActiveTierRequest]) (*connect.Response[adminv1.TierResponse], error) {
	tier, err := s.tiers.Active(ctx)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&adminv1.TierResponse{Tier: tier}), nil
}

func connectError(err error) *connect.Error {
	var code connect.Code
	switch domain.KindOf(err) {
	case domain.KindInvalidInput:
		code = connect.CodeInvalidArgument
	case domain.KindNotFound:
		code = connect.CodeNotFound
	case domain.KindServiceUnavailable, domain.KindConfigMissing, domain.KindBadGateway:
		code = connect.CodeUnavailable
	default:
		code = connect.CodeInternal
	}
	return connect.NewError(code, err)
}
