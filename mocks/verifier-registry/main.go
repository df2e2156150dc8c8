// Command verifier-registry is a mock registry source for local development.
// It serves canned verifier registry snapshots in the wire format the sync
// engine's HTTP fetcher expects. Point CONCORD_REGISTRY_SOURCE_URL at it.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"time"
)

type proofBundle struct {
	Registration   string `json:"registration"`
	Identity       string `json:"identity"`
	Competency     string `json:"competency"`
	ChainSignature string `json:"chain_signature"`
}

type verifierMetadata struct {
	ReputationScore float64  `json:"reputation_score"`
	Jurisdiction    string   `json:"jurisdiction"`
	Certifications  []string `json:"certifications,omitempty"`
}

type verifierEntry struct {
	ID                string           `json:"id"`
	PublicKey         string           `json:"public_key"`
	CredentialHash    string           `json:"credential_hash"`
	RegisteredAt      time.Time        `json:"registered_at"`
	LastValidatedAt   time.Time        `json:"last_validated_at"`
	Status            string           `json:"status"`
	Tier              string           `json:"tier"`
	Specializations   []string         `json:"specializations,omitempty"`
	VerificationCount int              `json:"verification_count"`
	SuccessRate       float64          `json:"success_rate"`
	Proofs            proofBundle      `json:"proofs"`
	Metadata          verifierMetadata `json:"metadata"`
}

type registrySnapshot struct {
	ID              string          `json:"id"`
	Version         int64           `json:"version"`
	ChainID         string          `json:"chain_id"`
	ConsensusHash   string          `json:"consensus_hash"`
	Verifiers       []verifierEntry `json:"verifiers"`
	TotalVerifiers  int             `json:"total_verifiers"`
	ActiveVerifiers int             `json:"active_verifiers"`
}

func snapshots() map[string]registrySnapshot {
	registered := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)
	validated := time.Date(2026, 8, 1, 6, 30, 0, 0, time.UTC)

	entry := func(id, tier, jurisdiction string, reputation float64) verifierEntry {
		return verifierEntry{
			ID:                id,
			PublicKey:         "ed25519:9f3ab8c1d2e4f5a6b7c8d9e0f1a2b3c4",
			CredentialHash:    "blake2b:77aa88bb99cc00dd11ee22ff33aa44bb",
			RegisteredAt:      registered,
			LastValidatedAt:   validated,
			Status:            "active",
			Tier:              tier,
			Specializations:   []string{"governance"},
			VerificationCount: 120,
			SuccessRate:       0.98,
			Proofs: proofBundle{
				Registration:   "reg-proof-0a1b2c3d4e5f6071",
				Identity:       "id-proof-8899aabbccddeeff",
				Competency:     "comp-proof-1032547698badcfe",
				ChainSignature: "sig-f0e1d2c3b4a5968778695a4b3c2d1e0f",
			},
			Metadata: verifierMetadata{
				ReputationScore: reputation,
				Jurisdiction:    jurisdiction,
				Certifications:  []string{"iso-17065"},
			},
		}
	}

	euWest := registrySnapshot{
		ID:            "eu-west-verifiers",
		Version:       42,
		ChainID:       "concord-main-1",
		ConsensusHash: "c0ffee00decafbad1122334455667788",
		Verifiers: []verifierEntry{
			entry("vrf-eu-west-001", "authority", "eu-west", 0.97),
			entry("vrf-eu-west-002", "expert", "eu-west", 0.91),
			entry("vrf-eu-west-003", "advanced", "eu-west", 0.84),
		},
	}
	nordic := registrySnapshot{
		ID:            "nordic-verifiers",
		Version:       17,
		ChainID:       "concord-main-1",
		ConsensusHash: "aabbccddeeff00112233445566778899",
		Verifiers: []verifierEntry{
			entry("vrf-nordic-001", "expert", "eu-north", 0.93),
			entry("vrf-nordic-002", "basic", "eu-north", 0.71),
		},
	}

	out := make(map[string]registrySnapshot, 2)
	for _, snapshot := range []registrySnapshot{euWest, nordic} {
		snapshot.TotalVerifiers = len(snapshot.Verifiers)
		snapshot.ActiveVerifiers = len(snapshot.Verifiers)
		out[snapshot.ID] = snapshot
	}
	return out
}

func main() {
	addr := flag.String("addr", ":9501", "listen address")
	flag.Parse()

	data := snapshots()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /registries/{id}", func(w http.ResponseWriter, r *http.Request) {
		snapshot, ok := data[r.PathValue("id")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snapshot)
	})

	log.Printf("mock verifier registry listening on %s (%d registries)", *addr, len(data))
	log.Fatal(http.ListenAndServe(*addr, mux))
}
