package test

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpapi "concord/internal/http"
	"concord/internal/proposal/crossdeck"
	"concord/internal/proposal/federation"
	proposalhandler "concord/internal/proposal/handler"
	proposalindex "concord/internal/proposal/index"
	proposalservice "concord/internal/proposal/service"
	"concord/internal/registry/consensus"
	"concord/internal/registry/fetcher"
	registryhandler "concord/internal/registry/handler"
	"concord/internal/registry/models"
	"concord/internal/registry/proof"
	registryservice "concord/internal/registry/service"
	registrystore "concord/internal/registry/store"
	id "concord/pkg/domain"
	"concord/pkg/testutil"
)

const adminToken = "smoke-admin-token"

// newNode assembles the full router backed by in-memory stores, mirroring
// the no-backend path in cmd/server.
func newNode(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	results := registrystore.NewInMemory(100)
	engine := registryservice.New(
		fetcher.NewStatic(seededRegistry()),
		proof.New(proof.NewDigestStrategy(0)),
		consensus.NewThresholdEvaluator(consensus.DefaultThreshold),
		registryservice.WithResultStore(results),
	)

	idx := proposalindex.New()
	svc := proposalservice.New(idx, crossdeck.NewAggregator())
	authenticator := federation.NewAuthenticator("smoke-test-key", "node-local")
	coordinator := federation.NewCoordinator(idx, federation.NewHTTPTransport(nil, authenticator))

	return httpapi.New(httpapi.Deps{
		Logger:         logger,
		Registry:       registryhandler.New(engine, results, logger),
		Proposals:      proposalhandler.New(svc, coordinator, logger),
		PeerVerifier:   authenticator,
		AdminToken:     adminToken,
		ClientMetadata: true,
	})
}

func seededRegistry() *models.VerifierRegistry {
	verifiers := make([]models.VerifierEntry, 0, 4)
	for i := 0; i < 4; i++ {
		verifiers = append(verifiers, models.VerifierEntry{
			ID:             id.VerifierID(fmt.Sprintf("smoke-ver-%02d", i)),
			CredentialHash: "3a7bd3e2360a3d29eea436fcfb7e44c7",
			Status:         models.VerifierStatusPending,
			Tier:           models.TierBasic,
			Proofs: models.ProofBundle{
				Registration:   "reg-proof-0123456789abcdef",
				Identity:       "idn-proof-0123456789abcdef",
				Competency:     "cmp-proof-0123456789abcdef",
				ChainSignature: "sig-proof-0123456789abcdef",
			},
		})
	}
	registry := &models.VerifierRegistry{
		ID:        id.RegistryID("smoke-registry"),
		Version:   3,
		ChainID:   "concord-smoke",
		Verifiers: verifiers,
	}
	registry.Recount()
	return registry
}

func TestNodeSmoke(t *testing.T) {
	testutil.Given(t, "a node assembled with in-memory backends", func(t *testing.T) {
		router := newNode(t)

		testutil.When(t, "probing GET /healthz", func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			testutil.Then(t, "the node reports ok", func(t *testing.T) {
				if rec.Code != http.StatusOK {
					t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
				}
				if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
					t.Fatalf("unexpected health body: %s", rec.Body.String())
				}
			})
		})

		var proposalID string
		testutil.When(t, "submitting a proposal on the public surface", func(t *testing.T) {
			body := `{
				"title": "Upper Basin Water Compact",
				"description": "Establishes shared drawing rights on the upper basin reservoirs, including drought-year reductions and arbitration procedure.",
				"type": "policy",
				"primary_jurisdiction": "eu-west",
				"node_ids": ["node-alpha"],
				"quorum": {"min_participation": 5, "eligible_voters": 100},
				"voting_window": {"start": "2026-08-10T00:00:00Z", "end": "2026-08-17T00:00:00Z"},
				"submitter": "secretariat@eu-west.concord.test"
			}`
			req := httptest.NewRequest(http.MethodPost, "/proposals", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			testutil.Then(t, "the proposal is stored as pending", func(t *testing.T) {
				if rec.Code != http.StatusCreated {
					t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
				}
				var created struct {
					ID         string `json:"id"`
					SyncStatus string `json:"sync_status"`
				}
				if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
					t.Fatalf("decode submit response: %v", err)
				}
				if created.ID == "" {
					t.Fatal("expected a proposal ID")
				}
				if created.SyncStatus != "pending" {
					t.Fatalf("expected sync status pending, got %q", created.SyncStatus)
				}
				proposalID = created.ID
			})
		})

		testutil.When(t, "reading the proposal back", func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/proposals/"+proposalID, nil))

			testutil.Then(t, "the stored proposal round-trips", func(t *testing.T) {
				if rec.Code != http.StatusOK {
					t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
				}
				if !strings.Contains(rec.Body.String(), "Upper Basin Water Compact") {
					t.Fatalf("proposal title missing from body: %s", rec.Body.String())
				}
			})
		})

		testutil.When(t, "triggering a registry sync without the admin token", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/registry/sync", strings.NewReader(`{"registry_id":"smoke-registry"}`))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			testutil.Then(t, "the trigger is rejected", func(t *testing.T) {
				if rec.Code != http.StatusUnauthorized {
					t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
				}
			})
		})

		testutil.When(t, "triggering a registry sync as an operator", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/registry/sync", strings.NewReader(`{"registry_id":"smoke-registry"}`))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Admin-Token", adminToken)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			testutil.Then(t, "the seeded registry reaches consensus", func(t *testing.T) {
				if rec.Code != http.StatusOK {
					t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
				}
				var result struct {
					ConsensusAchieved  bool `json:"consensus_achieved"`
					VerifiersValidated int  `json:"verifiers_validated"`
				}
				if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
					t.Fatalf("decode sync response: %v", err)
				}
				if !result.ConsensusAchieved {
					t.Fatal("expected consensus on an all-valid registry")
				}
				if result.VerifiersValidated != 4 {
					t.Fatalf("expected 4 validated verifiers, got %d", result.VerifiersValidated)
				}
			})

			testutil.And(t, "the run is recorded in sync history", func(t *testing.T) {
				req := httptest.NewRequest(http.MethodGet, "/registry/syncs", nil)
				req.Header.Set("X-Admin-Token", adminToken)
				rec := httptest.NewRecorder()
				router.ServeHTTP(rec, req)

				if rec.Code != http.StatusOK {
					t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
				}
				if !strings.Contains(rec.Body.String(), "smoke-registry") {
					t.Fatalf("sync history missing the recorded run: %s", rec.Body.String())
				}
			})
		})
	})
}
