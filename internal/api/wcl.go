package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"wcl-enricher/internal/config"
	"wcl-enricher/internal/domain"
	"wcl-enricher/internal/metrics"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// WCLClient talks to the Warcraft Logs v2 API. Every data call acquires a
// fresh client-credentials token first; tokens are never cached.
type WCLClient struct {
	clientID     string
	clientSecret string
	tokenURL     string
	apiURL       string
	timeout      time.Duration
	client       *fasthttp.Client
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

func NewWCLClient(cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) *WCLClient {
	return &WCLClient{
		clientID:     cfg.WCLClientID,
		clientSecret: cfg.WCLClientSecret,
		tokenURL:     cfg.WCLTokenURL,
		apiURL:       cfg.WCLAPIURL,
		timeout:      cfg.UpstreamTimeout,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         cfg.UpstreamTimeout,
			WriteTimeout:        cfg.UpstreamTimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		metrics: m,
		logger:  logger,
	}
}

func (c *WCLClient) Configured() bool {
	return c.clientID != "" && c.clientSecret != ""
}

// GetToken exchanges the configured client id/secret for a bearer token.
func (c *WCLClient) GetToken(ctx context.Context) (string, error) {
	if !c.Configured() {
		return "", domain.NewError(domain.KindConfigMissing, "warcraft logs client credentials are not configured")
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.tokenURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.clientID+":"+c.clientSecret)))
	req.SetBodyString("grant_type=client_credentials")

	if err := c.do(ctx, req, resp); err != nil {
		c.metrics.ObserveUpstream("token", "network_error")
		return "", domain.WrapError(domain.KindNetworkError, "failed to reach warcraft logs token endpoint", err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		c.metrics.ObserveUpstream("token", "auth_failed")
		return "", domain.NewError(domain.KindAuthFailed, fmt.Sprintf("warcraft logs token request failed with status %d", resp.StatusCode()))
	}

	var token tokenResponse
	if err := json.Unmarshal(resp.Body(), &token); err != nil {
		c.metrics.ObserveUpstream("token", "request_failed")
		return "", domain.WrapError(domain.KindRequestFailed, "failed to decode warcraft logs token", err)
	}
	if token.AccessToken == "" {
		c.metrics.ObserveUpstream("token", "request_failed")
		return "", domain.NewError(domain.KindRequestFailed, "warcraft logs token response has no access token")
	}

	c.metrics.ObserveUpstream("token", "ok")
	return token.AccessToken, nil
}

func (c *WCLClient) FetchByName(ctx context.Context, region domain.Region, realm, name string) (*NormalizedCharacter, error) {
	c.logger.Debug().Str("region", string(region)).Str("realm", realm).Str("name", name).Msg("fetching character by name")

	data, err := doQuery[characterData](ctx, c, "character_by_name", characterByNameQuery, map[string]any{
		"name":         name,
		"serverSlug":   realm,
		"serverRegion": strings.ToLower(string(region)),
	})
	if err != nil {
		return nil, err
	}
	return c.characterFrom("character_by_name", data)
}

func (c *WCLClient) FetchByID(ctx context.Context, id string) (*NormalizedCharacter, error) {
	c.logger.Debug().Str("id", id).Msg("fetching character by id")

	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, domain.WrapError(domain.KindInvalidInput, fmt.Sprintf("character id %q is not numeric", id), err)
	}

	data, err := doQuery[characterData](ctx, c, "character_by_id", characterByIDQuery, map[string]any{"id": n})
	if err != nil {
		return nil, err
	}
	return c.characterFrom("character_by_id", data)
}

func (c *WCLClient) characterFrom(operation string, data *characterData) (*NormalizedCharacter, error) {
	if data == nil || data.CharacterData.Character == nil {
		c.metrics.ObserveUpstream(operation, "not_found")
		return nil, domain.NewError(domain.KindCharacterNotFound, "character not found on warcraft logs")
	}
	character, err := Normalize(data.CharacterData.Character)
	if err != nil {
		c.metrics.ObserveUpstream(operation, "request_failed")
		return nil, err
	}
	c.metrics.ObserveUpstream(operation, "ok")
	return character, nil
}

func (c *WCLClient) FetchZoneEncounters(ctx context.Context, zoneID int) (*Zone, error) {
	data, err := doQuery[worldData](ctx, c, "zone_encounters", zoneEncountersQuery, map[string]any{"zoneId": zoneID})
	if err != nil {
		return nil, err
	}
	if data == nil || data.WorldData.Zone == nil {
		c.metrics.ObserveUpstream("zone_encounters", "not_found")
		return nil, domain.NewError(domain.KindZoneNotFound, fmt.Sprintf("zone %d not found on warcraft logs", zoneID))
	}

	z := data.WorldData.Zone
	zone := &Zone{ID: z.ID, Name: z.Name, Encounters: make([]Encounter, 0, len(z.Encounters))}
	for _, e := range z.Encounters {
		zone.Encounters = append(zone.Encounters, Encounter{ID: e.ID, Name: e.Name})
	}

	c.metrics.ObserveUpstream("zone_encounters", "ok")
	return zone, nil
}

func (c *WCLClient) FetchZoneProgression(ctx context.Context, region domain.Region, realm, name string, zoneID int) (*ZoneProgression, error) {
	data, err := doQuery[progressionData](ctx, c, "zone_progression", zoneProgressionQuery, map[string]any{
		"name":         name,
		"serverSlug":   realm,
		"serverRegion": strings.ToLower(string(region)),
		"zoneId":       zoneID,
	})
	if err != nil {
		return nil, err
	}
	if data == nil || data.CharacterData.Character == nil {
		c.metrics.ObserveUpstream("zone_progression", "not_found")
		return nil, domain.NewError(domain.KindCharacterNotFound, "character not found on warcraft logs")
	}

	ch := data.CharacterData.Character
	progression, err := buildProgression(zoneID, map[domain.Difficulty]json.RawMessage{
		domain.DifficultyNormal: ch.Normal,
		domain.DifficultyHeroic: ch.Heroic,
		domain.DifficultyMythic: ch.Mythic,
	})
	if err != nil {
		c.metrics.ObserveUpstream("zone_progression", "error")
		return nil, err
	}

	c.metrics.ObserveUpstream("zone_progression", "ok")
	return progression, nil
}

func doQuery[T any](ctx context.Context, client *WCLClient, operation, query string, variables map[string]any) (*T, error) {
	token, err := client.GetToken(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s query: %w", operation, err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(client.apiURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.SetBody(body)

	if err := client.do(ctx, req, resp); err != nil {
		client.metrics.ObserveUpstream(operation, "network_error")
		return nil, domain.WrapError(domain.KindNetworkError, "failed to reach warcraft logs", err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		client.metrics.ObserveUpstream(operation, "request_failed")
		return nil, domain.NewError(domain.KindRequestFailed, fmt.Sprintf("warcraft logs request failed with status %d", resp.StatusCode()))
	}

	var result graphQLResponse[T]
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		client.metrics.ObserveUpstream(operation, "request_failed")
		return nil, domain.WrapError(domain.KindRequestFailed, "failed to decode warcraft logs response", err)
	}

	if len(result.Errors) > 0 {
		client.metrics.ObserveUpstream(operation, "upstream_error")
		messages := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			messages = append(messages, e.Message)
		}
		client.logger.Warn().Str("operation", operation).Strs("errors", messages).Msg("warcraft logs returned errors")
		return nil, domain.NewError(domain.KindUpstreamError, "warcraft logs error: "+strings.Join(messages, "; "))
	}

	return result.Data, nil
}

// do runs one request bounded by the client timeout and the context deadline,
// whichever is earlier.
func (c *WCLClient) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	err := c.client.DoDeadline(req, resp, deadline)
	if errors.Is(err, fasthttp.ErrTimeout) {
		return fmt.Errorf("warcraft logs did not answer within %s: %w", c.timeout, err)
	}
	return err
}
