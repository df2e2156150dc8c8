package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"concord/internal/registry/handler/mocks"
	"concord/internal/registry/models"
	"concord/internal/registry/store"
	id "concord/pkg/domain"
	"concord/pkg/testutil"
)

type RegistryHandlerSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *RegistryHandlerSuite) SetupSuite() {
	s.ctx = context.Background()
}

func TestRegistryHandlerSuite(t *testing.T) {
	suite.Run(t, new(RegistryHandlerSuite))
}

func newTestHandler(t *testing.T, results store.ResultStore) (chi.Router, *mocks.MockEngine) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	engine := mocks.NewMockEngine(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	New(engine, results, logger).Register(r)
	return r, engine
}

func syncResultFixture(registryID string, validated int) *models.SyncResult {
	return &models.SyncResult{
		RegistryID:         id.RegistryID(registryID),
		Timestamp:          time.Date(2025, 11, 20, 9, 30, 0, 0, time.UTC),
		ChainHeight:        4210,
		ConsensusAchieved:  validated > 0,
		ConsensusPercent:   float64(validated) * 10,
		VerifiersProcessed: 10,
		VerifiersValidated: validated,
		VerifiersFailed:    10 - validated,
		Duration:           125 * time.Millisecond,
	}
}

func (s *RegistryHandlerSuite) TestHandleSync() {
	router, engine := newTestHandler(s.T(), nil)
	engine.EXPECT().
		ValidateAndSync(gomock.Any(), id.RegistryID("reg-main")).
		Return(syncResultFixture("reg-main", 8))

	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/registry/sync", `{"registry_id":"reg-main"}`)
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[SyncResultResponse](s.T(), rr)
	assert.Equal(s.T(), "reg-main", resp.RegistryID)
	assert.True(s.T(), resp.ConsensusAchieved)
	assert.Equal(s.T(), 8, resp.VerifiersValidated)
	assert.Equal(s.T(), int64(125), resp.DurationMS)
}

func (s *RegistryHandlerSuite) TestHandleSyncRejectsMissingRegistryID() {
	router, _ := newTestHandler(s.T(), nil)

	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/registry/sync", `{"registry_id":"   "}`)
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	assert.Contains(s.T(), rr.Body.String(), "registry_id is required")
}

func (s *RegistryHandlerSuite) TestHandleSyncRejectsMalformedJSON() {
	router, _ := newTestHandler(s.T(), nil)

	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/registry/sync", `{"registry_id":`)
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	assert.Contains(s.T(), rr.Body.String(), "invalid JSON body")
}

func (s *RegistryHandlerSuite) TestHandleBatchSync() {
	router, engine := newTestHandler(s.T(), nil)
	results := []*models.SyncResult{
		syncResultFixture("reg-a", 9),
		syncResultFixture("reg-b", 0),
	}
	engine.EXPECT().
		BatchSync(gomock.Any(), []id.RegistryID{"reg-a", "reg-b"}).
		Return(results)
	engine.EXPECT().
		Summary(results).
		Return(models.Summarize(results))

	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/registry/sync/batch", `{"registry_ids":["reg-a","reg-b"]}`)
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[BatchSyncResponse](s.T(), rr)
	require.Len(s.T(), resp.Results, 2)
	assert.Equal(s.T(), "reg-a", resp.Results[0].RegistryID)
	assert.Equal(s.T(), "reg-b", resp.Results[1].RegistryID)
	require.NotNil(s.T(), resp.Summary)
	assert.Equal(s.T(), 2, resp.Summary.TotalProcessed)
	assert.Equal(s.T(), 9, resp.Summary.TotalValidated)
}

func (s *RegistryHandlerSuite) TestHandleBatchSyncRejectsOversizedBatch() {
	router, _ := newTestHandler(s.T(), nil)

	ids := make([]string, maxBatchSize+1)
	for i := range ids {
		ids[i] = "reg-" + strings.Repeat("x", 3)
	}
	payload, err := json.Marshal(map[string]any{"registry_ids": ids})
	require.NoError(s.T(), err)

	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/registry/sync/batch", string(payload))
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	assert.Contains(s.T(), rr.Body.String(), "registry_ids must contain at most")
}

func (s *RegistryHandlerSuite) TestHandleListSyncs() {
	history := store.NewInMemory(16)
	require.NoError(s.T(), history.Record(s.ctx, syncResultFixture("reg-a", 5)))
	require.NoError(s.T(), history.Record(s.ctx, syncResultFixture("reg-b", 7)))
	require.NoError(s.T(), history.Record(s.ctx, syncResultFixture("reg-a", 9)))
	router, _ := newTestHandler(s.T(), history)

	s.Run("recent across registries newest first", func() {
		rr := testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, "/registry/syncs"))

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[SyncListResponse](s.T(), rr)
		require.Len(s.T(), resp.Syncs, 3)
		assert.Equal(s.T(), 9, resp.Syncs[0].VerifiersValidated)
		assert.Equal(s.T(), 7, resp.Syncs[1].VerifiersValidated)
	})

	s.Run("filtered by registry id", func() {
		rr := testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, "/registry/syncs?registry_id=reg-a"))

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[SyncListResponse](s.T(), rr)
		require.Len(s.T(), resp.Syncs, 2)
		for _, sync := range resp.Syncs {
			assert.Equal(s.T(), "reg-a", sync.RegistryID)
		}
	})

	s.Run("limit caps result count", func() {
		rr := testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, "/registry/syncs?limit=1"))

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[SyncListResponse](s.T(), rr)
		assert.Len(s.T(), resp.Syncs, 1)
	})
}

func (s *RegistryHandlerSuite) TestHandleListSyncsRejectsBadLimit() {
	router, _ := newTestHandler(s.T(), store.NewInMemory(4))

	for _, limit := range []string{"zero", "-3", "0"} {
		rr := testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, "/registry/syncs?limit="+limit))

		assert.Equal(s.T(), http.StatusBadRequest, rr.Code, "limit=%s", limit)
		assert.Contains(s.T(), rr.Body.String(), "limit must be a positive integer")
	}
}

func (s *RegistryHandlerSuite) TestHandleListSyncsWithoutStore() {
	router, _ := newTestHandler(s.T(), nil)

	rr := testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, "/registry/syncs"))

	testutil.AssertStatus(s.T(), rr, http.StatusServiceUnavailable)
	assert.Contains(s.T(), rr.Body.String(), "sync history is not configured")
}

func (s *RegistryHandlerSuite) TestHandleSyncSummary() {
	history := store.NewInMemory(16)
	results := []*models.SyncResult{
		syncResultFixture("reg-a", 6),
		syncResultFixture("reg-b", 10),
	}
	for _, result := range results {
		require.NoError(s.T(), history.Record(s.ctx, result))
	}
	router, engine := newTestHandler(s.T(), history)
	engine.EXPECT().
		Summary(gomock.Any()).
		Return(models.Summarize(results))

	rr := testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, "/registry/syncs/summary"))

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[SummaryResponse](s.T(), rr)
	assert.Equal(s.T(), 2, resp.TotalProcessed)
	assert.Equal(s.T(), 16, resp.TotalValidated)
	assert.Equal(s.T(), int64(125), resp.AverageDurationMS)
	assert.InDelta(s.T(), 100.0, resp.ConsensusRate, 0.001)
}
