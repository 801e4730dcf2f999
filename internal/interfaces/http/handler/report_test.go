package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/buildium/backend/internal/application/report"
	"github.com/buildium/backend/internal/domain/invoice"
	"github.com/buildium/backend/internal/interfaces/http/dto"
)

func setupReportHandler(t *testing.T) (*MockInvoiceRepository, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mockRepo := new(MockInvoiceRepository)
	h := NewReportHandler(report.NewService(mockRepo, nil))

	engine := gin.New()
	engine.GET("/api/v1/reports/revenue", h.Revenue)
	engine.GET("/api/v1/reports/analytics", h.Analytics)
	return mockRepo, engine
}

func TestReportHandler_Revenue(t *testing.T) {
	mockRepo, engine := setupReportHandler(t)

	inv := storedTestInvoice(t)
	mockRepo.On("FindAll", mock.Anything, mock.MatchedBy(func(f invoice.Filter) bool {
		return f.DateFrom != nil && f.DateTo != nil
	})).Return([]invoice.Invoice{*inv}, int64(1), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/revenue?from=2025-01-01&to=2025-12-31", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["count"])

	periods := data["periods"].([]interface{})
	require.Len(t, periods, 1)
	assert.Equal(t, "2025-01", periods[0].(map[string]interface{})["period"])
}

func TestReportHandler_Revenue_Weekly(t *testing.T) {
	mockRepo, engine := setupReportHandler(t)

	inv := storedTestInvoice(t)
	mockRepo.On("FindAll", mock.Anything, mock.Anything).
		Return([]invoice.Invoice{*inv}, int64(1), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/revenue?granularity=week", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "week", data["granularity"])

	periods := data["periods"].([]interface{})
	require.Len(t, periods, 1)
	assert.Equal(t, "2025-W05", periods[0].(map[string]interface{})["period"])
}

func TestReportHandler_Revenue_BadGranularity(t *testing.T) {
	mockRepo, engine := setupReportHandler(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/revenue?granularity=quarter", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockRepo.AssertNotCalled(t, "FindAll")
}

func TestReportHandler_Analytics(t *testing.T) {
	mockRepo, engine := setupReportHandler(t)

	inv := storedTestInvoice(t)
	mockRepo.On("FindAll", mock.Anything, mock.Anything).
		Return([]invoice.Invoice{*inv}, int64(1), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/analytics", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["count"])

	distribution := data["status_distribution"].(map[string]interface{})
	assert.Equal(t, float64(1), distribution["pending"])

	top := data["top_counterparties"].([]interface{})
	require.Len(t, top, 1)
	assert.Equal(t, "ACME Maroc", top[0].(map[string]interface{})["name"])
}

func TestReportHandler_Revenue_BadDate(t *testing.T) {
	mockRepo, engine := setupReportHandler(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/revenue?from=January", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockRepo.AssertNotCalled(t, "FindAll")
}

func TestReportHandler_Revenue_InvertedRange(t *testing.T) {
	mockRepo, engine := setupReportHandler(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/revenue?from=2025-06-01&to=2025-01-01", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_VALIDATION")
	mockRepo.AssertNotCalled(t, "FindAll")
}
