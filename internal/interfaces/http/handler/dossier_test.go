package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	intelapp "github.com/bizlens/backend/internal/application/intel"
	"github.com/bizlens/backend/internal/domain/intel"
	"github.com/bizlens/backend/internal/domain/shared"
	"github.com/bizlens/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubDossierSources serves fixed source reads for dossier rebuilds. When
// release is non-nil the company read signals started (if set) and then
// blocks until release closes, so tests can hold a rebuild open.
type stubDossierSources struct {
	release chan struct{}
	started *sync.Once
	begun   chan struct{}
}

func (s *stubDossierSources) CompanyProfile(ctx context.Context, companyID uuid.UUID) (*intel.CompanyProfile, error) {
	if s.release != nil {
		if s.started != nil {
			s.started.Do(func() { close(s.begun) })
		}
		<-s.release
	}
	return &intel.CompanyProfile{
		CompanyID:     companyID,
		Name:          "Seabright Coffee Roasters",
		Industry:      "food",
		BusinessModel: "b2c",
		TeamSize:      9,
		RevenueModel:  "retail",
	}, nil
}

func (s *stubDossierSources) LatestFinancials(ctx context.Context, companyID uuid.UUID) (*intel.FinancialFigures, error) {
	revenue := decimal.NewFromInt(310_000)
	return &intel.FinancialFigures{Revenue: &revenue, FiscalYear: 2025}, nil
}

func (s *stubDossierSources) AssessmentStats(ctx context.Context, companyID uuid.UUID) (intel.AssessmentSection, error) {
	return intel.AssessmentSection{QuestionsAnswered: 5, TotalQuestions: 20}, nil
}

func (s *stubDossierSources) ValuationHistory(ctx context.Context, companyID uuid.UUID) (intel.ValuationSection, error) {
	return intel.ValuationSection{}, nil
}

func (s *stubDossierSources) TaskStats(ctx context.Context, companyID uuid.UUID) (intel.TasksSection, error) {
	return intel.TasksSection{TotalTasks: 4, CompletedTasks: 1, OpenTasks: 3}, nil
}

func (s *stubDossierSources) EvidenceStats(ctx context.Context, companyID uuid.UUID) (intel.EvidenceStats, error) {
	return intel.EvidenceStats{DocumentCount: 2, PresentCategories: []string{"financial"}}, nil
}

func (s *stubDossierSources) SignalStats(ctx context.Context, companyID uuid.UUID) (intel.SignalsSection, error) {
	return intel.SignalsSection{OpenSignals: []intel.SignalDigest{}}, nil
}

func (s *stubDossierSources) EngagementStats(ctx context.Context, companyID uuid.UUID) (intel.EngagementStats, error) {
	return intel.EngagementStats{CheckInsCompleted: 2}, nil
}

// memoryDossierRepo keeps snapshots in a map, one per company.
type memoryDossierRepo struct {
	mu        sync.Mutex
	snapshots map[uuid.UUID]*intel.DossierSnapshot
}

func newMemoryDossierRepo() *memoryDossierRepo {
	return &memoryDossierRepo{snapshots: make(map[uuid.UUID]*intel.DossierSnapshot)}
}

func (r *memoryDossierRepo) FindByCompany(ctx context.Context, companyID uuid.UUID) (*intel.DossierSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot, ok := r.snapshots[companyID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return snapshot, nil
}

func (r *memoryDossierRepo) Upsert(ctx context.Context, snapshot *intel.DossierSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[snapshot.CompanyID] = snapshot
	return nil
}

func (r *memoryDossierRepo) ListStale(ctx context.Context, builtBefore time.Time, limit int) ([]uuid.UUID, error) {
	return nil, nil
}

func newDossierTestRouter(dossiers *intelapp.DossierService) *gin.Engine {
	router := gin.New()
	h := NewDossierHandler(dossiers, nil)
	router.GET("/api/v1/companies/:companyId/dossier", h.GetDossier)
	router.POST("/api/v1/companies/:companyId/dossier/rebuild", h.Rebuild)
	return router
}

func TestDossierHandler_GetDossier(t *testing.T) {
	companyID := uuid.New()

	t.Run("returns the stored snapshot", func(t *testing.T) {
		repo := newMemoryDossierRepo()
		repo.snapshots[companyID] = handlerTestSnapshot(companyID)
		service := intelapp.NewDossierService(&stubDossierSources{}, repo, nil, zap.NewNop())
		router := newDossierTestRouter(service)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/companies/"+companyID.String()+"/dossier", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data intel.DossierSnapshot `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, companyID, resp.Data.CompanyID)
		assert.Equal(t, 2, resp.Data.Version)
	})

	t.Run("responds 404 when no dossier exists", func(t *testing.T) {
		service := intelapp.NewDossierService(&stubDossierSources{}, newMemoryDossierRepo(), nil, zap.NewNop())
		router := newDossierTestRouter(service)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/companies/"+companyID.String()+"/dossier", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusNotFound, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeSnapshotNotFound, resp.Error.Code)
	})

	t.Run("rejects a malformed company ID", func(t *testing.T) {
		service := intelapp.NewDossierService(&stubDossierSources{}, newMemoryDossierRepo(), nil, zap.NewNop())
		router := newDossierTestRouter(service)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/companies/nope/dossier", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDossierHandler_Rebuild(t *testing.T) {
	companyID := uuid.New()

	t.Run("rebuilds with the manual reason by default", func(t *testing.T) {
		repo := newMemoryDossierRepo()
		service := intelapp.NewDossierService(&stubDossierSources{}, repo, nil, zap.NewNop())
		router := newDossierTestRouter(service)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/companies/"+companyID.String()+"/dossier/rebuild", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data intel.DossierSnapshot `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, intel.RebuildReasonManual, resp.Data.Reason)
		assert.Equal(t, 1, resp.Data.Version)
		assert.Equal(t, "Seabright Coffee Roasters", resp.Data.Identity.Name)
	})

	t.Run("records the requested reason", func(t *testing.T) {
		repo := newMemoryDossierRepo()
		service := intelapp.NewDossierService(&stubDossierSources{}, repo, nil, zap.NewNop())
		router := newDossierTestRouter(service)

		body := strings.NewReader(`{"reason":"scheduled_refresh"}`)
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/companies/"+companyID.String()+"/dossier/rebuild", body)
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data intel.DossierSnapshot `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, intel.RebuildReasonScheduled, resp.Data.Reason)
	})

	t.Run("rejects an unknown reason", func(t *testing.T) {
		service := intelapp.NewDossierService(&stubDossierSources{}, newMemoryDossierRepo(), nil, zap.NewNop())
		router := newDossierTestRouter(service)

		body := strings.NewReader(`{"reason":"because"}`)
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/companies/"+companyID.String()+"/dossier/rebuild", body)
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	})

	t.Run("responds 409 while a rebuild is in flight", func(t *testing.T) {
		release := make(chan struct{})
		begun := make(chan struct{})
		sources := &stubDossierSources{release: release, started: &sync.Once{}, begun: begun}
		service := intelapp.NewDossierService(sources, newMemoryDossierRepo(), nil, zap.NewNop())
		router := newDossierTestRouter(service)

		firstDone := make(chan struct{})
		go func() {
			defer close(firstDone)
			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/v1/companies/"+companyID.String()+"/dossier/rebuild", nil)
			router.ServeHTTP(w, req)
		}()

		// Wait for the first rebuild to take the per-company slot.
		select {
		case <-begun:
		case <-time.After(time.Second):
			t.Fatal("first rebuild never started")
		}

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/companies/"+companyID.String()+"/dossier/rebuild", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeRebuildConflict, resp.Error.Code)

		close(release)
		<-firstDone
	})
}
