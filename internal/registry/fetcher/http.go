package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"concord/internal/registry/models"
	id "concord/pkg/domain"
	dErrors "concord/pkg/domain-errors"
	"concord/pkg/platform/sentinel"
)

const defaultFetchTimeout = 10 * time.Second

// HTTP fetches registry snapshots from a remote registry source serving
// JSON at GET {base}/registries/{id}.
type HTTP struct {
	baseURL string
	client  *http.Client
}

// NewHTTP builds an HTTP fetcher against the given base URL. A nil client
// gets a default with a bounded timeout.
func NewHTTP(baseURL string, client *http.Client) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &HTTP{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (h *HTTP) Fetch(ctx context.Context, registryID id.RegistryID) (*models.VerifierRegistry, error) {
	endpoint := h.baseURL + "/registries/" + url.PathEscape(string(registryID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "build registry request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "registry source unreachable")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("registry %s: %w", registryID, sentinel.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, dErrors.Newf(dErrors.CodeUnavailable,
			"registry source returned status %d", resp.StatusCode)
	}

	var registry models.VerifierRegistry
	if err := json.NewDecoder(resp.Body).Decode(&registry); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode registry snapshot")
	}
	if registry.ID == "" {
		registry.ID = registryID
	}
	return &registry, nil
}
