package adminv1

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const AdminServiceName = "wclcard.v1.AdminService"

const (
	AdminServiceEnrichProcedure           = "/wclcard.v1.AdminService/Enrich"
	AdminServiceListCacheEntriesProcedure = "/wclcard.v1.AdminService/ListCacheEntries"
	AdminServiceDeleteCacheEntryProcedure = "/wclcard.v1.AdminService/DeleteCacheEntry"
	AdminServiceImportTierProcedure       = "/wclcard.v1.AdminService/ImportTier"
	AdminServiceActivateTierProcedure     = "/wclcard.v1.AdminService/ActivateTier"
	AdminServiceListTiersProcedure        = "/wclcard.v1.AdminService/ListTiers"
	AdminServiceGetActiveTierProcedure    = "/wclcard.v1.AdminService/GetActiveTier"
)

type AdminServiceHandler interface {
	Enrich(context.Context, *connect.Request[EnrichRequest]) (*connect.Response[EnrichResponse], error)
	ListCacheEntries(context.Context, *connect.Request[ListCacheEntriesRequest]) (*connect.Response[ListCacheEntriesResponse], error)
	DeleteCacheEntry(context.Context, *connect.Request[DeleteCacheEntryRequest]) (*connect.Response[DeleteCacheEntryResponse], error)
	ImportTier(context.Context, *connect.Request[ImportTierRequest]) (*connect.Response[TierResponse], error)
	ActivateTier(context.Context, *connect.Request[ActivateTierRequest]) (*connect.Response[TierResponse], error)
	ListTiers(context.Context, *connect.Request[ListTiersRequest]) (*connect.Response[ListTiersResponse], error)
	GetActiveTier(context.Context, *connect.Request[GetActiveTierRequest]) (*connect.Response[TierResponse], error)
}

// NewAdminServiceHandler returns the mount path and handler for svc. All
// procedures speak the plain JSON codec.
func NewAdminServiceHandler(svc AdminServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)

	enrich := connect.NewUnaryHandler(AdminServiceEnrichProcedure, svc.Enrich, opts...)
	listCacheEntries := connect.NewUnaryHandler(AdminServiceListCacheEntriesProcedure, svc.ListCacheEntries, opts...)
	deleteCacheEntry := connect.NewUnaryHandler(AdminServiceDeleteCacheEntryProcedure, svc.DeleteCacheEntry, opts...)
	importTier := connect.NewUnaryHandler(AdminServiceImportTierProcedure, svc.ImportTier, opts...)
	activateTier := connect.NewUnaryHandler(AdminServiceActivateTierProcedure, svc.ActivateTier, opts...)
	listTiers := connect.NewUnaryHandler(AdminServiceListTiersProcedure, svc.ListTiers, opts...)
	getActiveTier := connect.NewUnaryHandler(AdminServiceGetActiveTierProcedure, svc.GetActiveTier, opts...)

	return "/" + AdminServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case AdminServiceEnrichProcedure:
			enrich.ServeHTTP(w, r)
		case AdminServiceListCacheEntriesProcedure:
			listCacheEntries.ServeHTTP(w, r)
		case AdminServiceDeleteCacheEntryProcedure:
			deleteCacheEntry.ServeHTTP(w, r)
		case AdminServiceImportTierProcedure:
			importTier.ServeHTTP(w, r)
		case AdminServiceActivateTierProcedure:
			activateTier.ServeHTTP(w, r)
		case AdminServiceListTiersProcedure:
			listTiers.ServeHTTP(w, r)
		case AdminServiceGetActiveTierProcedure:
			getActiveTier.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

type AdminServiceClient struct {
	enrich           *connect.Client[EnrichRequest, EnrichResponse]
	listCacheEntries *connect.Client[ListCacheEntriesRequest, ListCacheEntriesResponse]
	deleteCacheEntry *connect.Client[DeleteCacheEntryRequest, DeleteCacheEntryResponse]
	importTier       *connect.Client[ImportTierRequest, TierResponse]
	activateTier     *connect.Client[ActivateTierRequest, TierResponse]
	listTiers        *connect.Client[ListTiersRequest, ListTiersResponse]
	getActiveTier    *connect.Client[GetActiveTierRequest, TierResponse]
}

func NewAdminServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AdminServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)

	return &AdminServiceClient{
		enrich:           connect.NewClient[EnrichRequest, EnrichResponse](httpClient, baseURL+AdminServiceEnrichProcedure, opts...),
		listCacheEntries: connect.NewClient[ListCacheEntriesRequest, ListCacheEntriesResponse](httpClient, baseURL+AdminServiceListCacheEntriesProcedure, opts...),
		deleteCacheEntry: connect.NewClient[DeleteCacheEntryRequest, DeleteCacheEntryResponse](httpClient, baseURL+AdminServiceDeleteCacheEntryProcedure, opts...),
		importTier:       connect.NewClient[ImportTierRequest, TierResponse](httpClient, baseURL+AdminServiceImportTierProcedure, opts...),
		activateTier:     connect.NewClient[ActivateTierRequest, TierResponse](httpClient, baseURL+AdminServiceActivateTierProcedure, opts...),
		listTiers:        connect.NewClient[ListTiersRequest, ListTiersResponse](httpClient, baseURL+AdminServiceListTiersProcedure, opts...),
		getActiveTier:    connect.NewClient[GetActiveTierRequest, TierResponse](httpClient, baseURL+AdminServiceGetActiveTierProcedure, opts...),
	}
}

func (c *AdminServiceClient) Enrich(ctx context.Context, req *connect.Request[EnrichRequest]) (*connect.Response[EnrichResponse], error) {
	return c.enrich.CallUnary(ctx, req)
}

func (c *AdminServiceClient) ListCacheEntries(ctx context.Context, req *connect.Request[ListCacheEntriesRequest]) (*connect.Response[ListCacheEntriesResponse], error) {
	return c.listCacheEntries.CallUnary(ctx, req)
}

func (c *AdminServiceClient) DeleteCacheEntry(ctx context.Context, req *connect.Request[DeleteCacheEntryRequest]) (*connect.Response[DeleteCacheEntryResponse], error) {
	return c.deleteCacheEntry.CallUnary(ctx, req)
}

func (c *AdminServiceClient) ImportTier(ctx context.Context, req *connect.Request[ImportTierRequest]) (*connect.Response[TierResponse], error) {
	return c.importTier.CallUnary(ctx, req)
}

func (c *AdminServiceClient) ActivateTier(ctx context.Context, req *connect.Request[ActivateTierRequest]) (*connect.Response[TierResponse], error) {
	return c.activateTier.CallUnary(ctx, req)
}

func (c *AdminServiceClient) ListTiers(ctx context.Context, req *connect.Request[ListTiersRequest]) (*connect.Response[ListTiersResponse], error) {
	return c.listTiers.CallUnary(ctx, req)
}

func (c *AdminServiceClient) GetActiveTier(ctx context.Context, req *connect.Request[GetActiveTierRequest]) (*connect.Response[TierResponse], error) {
	return c.getActiveTier.CallUnary(ctx, req)
}
