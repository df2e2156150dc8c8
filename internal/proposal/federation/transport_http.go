package federation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"concord/internal/proposal/models"
	id "concord/pkg/domain"
	dErrors "concord/pkg/domain-errors"
)

// HTTPTransport pushes proposals to peer nodes over HTTP. Each push is a
// POST to the node's /federation/proposals endpoint carrying an Envelope
// and a bearer token signed by this node's Authenticator.
type HTTPTransport struct {
	endpoints map[id.NodeID]string
	auth      *Authenticator
	protocol  id.SyncProtocolVersion
	client    *http.Client
}

// HTTPTransportOption configures an HTTPTransport.
type HTTPTransportOption func(*HTTPTransport)

// WithHTTPClient overrides the default HTTP client. Per-push deadlines come
// from the coordinator's context, so the client itself carries no timeout.
func WithHTTPClient(client *http.Client) HTTPTransportOption {
	return func(t *HTTPTransport) {
		if client != nil {
			t.client = client
		}
	}
}

// NewHTTPTransport builds a transport for the given node endpoint map. Keys
// are node IDs, values are peer base URLs.
func NewHTTPTransport(endpoints map[id.NodeID]string, auth *Authenticator, opts ...HTTPTransportOption) *HTTPTransport {
	t := &HTTPTransport{
		endpoints: endpoints,
		auth:      auth,
		protocol:  id.DefaultSyncProtocol(),
		client:    &http.Client{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Push sends the proposal to one node and interprets the response. A nil
// return means the node acknowledged the push.
func (t *HTTPTransport) Push(ctx context.Context, node id.NodeID, proposal *models.RegionalProposal) error {
	base, ok := t.endpoints[node]
	if !ok {
		return dErrors.Newf(dErrors.CodeUnavailable, "no endpoint configured for node %s", node)
	}

	envelope := Envelope{
		Protocol: t.protocol,
		Origin:   t.auth.Origin(),
		SentAt:   time.Now().UTC(),
		Proposal: proposal,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode push envelope")
	}

	url := strings.TrimRight(base, "/") + "/federation/proposals"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build push request")
	}

	token, err := t.auth.Sign(time.Now())
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := t.client.Do(req)
	if err != nil {
		// Keep the chain intact so the coordinator can classify deadline
		// errors as timeouts.
		return fmt.Errorf("push to node %s: %w", node, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return dErrors.Newf(dErrors.CodeUnauthorized, "node %s rejected push credentials", node)
	default:
		return dErrors.Newf(dErrors.CodeUnavailable, "node %s returned status %d", node, resp.StatusCode)
	}
}
