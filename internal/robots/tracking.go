package robots

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"alloia/internal/kvstore"
	"alloia/internal/logger"
)

// TrackingGateway is the slice of the remote API the provisioner uses.
type TrackingGateway interface {
	RegisterSite(ctx context.Context, siteURL, domain string) (map[string]interface{}, error)
	ProvisionTracking(ctx context.Context, websiteID string) (map[string]interface{}, error)
}

// Provisioner registers the site with the service and enables bot
// tracking for it, persisting the returned website id under
// KeyTrackingSite so the audit counts the graph as enabled.
type Provisioner struct {
	gateway TrackingGateway
	kv      kvstore.Store
	siteURL string
	log     *logger.Logger
}

func NewProvisioner(gateway TrackingGateway, kv kvstore.Store, siteURL string, log *logger.Logger) *Provisioner {
	return &Provisioner{
		gateway: gateway,
		kv:      kv,
		siteURL: strings.TrimRight(siteURL, "/"),
		log:     log,
	}
}

// Ensure provisions tracking once. When a website id is already stored
// the remote calls are skipped and the stored id is returned.
func (p *Provisioner) Ensure(ctx context.Context) (string, error) {
	if id, err := p.kv.Get(ctx, KeyTrackingSite); err == nil && id != "" {
		return id, nil
	}

	resp, err := p.gateway.RegisterSite(ctx, p.siteURL, siteDomain(p.siteURL))
	if err != nil {
		return "", fmt.Errorf("site registration failed: %w", err)
	}
	id := websiteID(resp)
	if id == "" {
		return "", errors.New("site registration returned no website id")
	}

	if _, err := p.gateway.ProvisionTracking(ctx, id); err != nil {
		return "", fmt.Errorf("tracking provisioning failed: %w", err)
	}

	if err := p.kv.Set(ctx, KeyTrackingSite, id); err != nil {
		return "", fmt.Errorf("failed to store website id: %w", err)
	}
	p.log.Info("Bot tracking provisioned for website %s", id)
	return id, nil
}

// websiteID extracts the id from a registration response, accepting a
// top-level id or one nested under "website".
func websiteID(resp map[string]interface{}) string {
	if id, ok := resp["id"].(string); ok && id != "" {
		return id
	}
	if site, ok := resp["website"].(map[string]interface{}); ok {
		if id, ok := site["id"].(string); ok {
			return id
		}
	}
	return ""
}

func siteDomain(siteURL string) string {
	u, err := url.Parse(siteURL)
	if err != nil || u.Host == "" {
		return siteURL
	}
	return u.Hostname()
}
