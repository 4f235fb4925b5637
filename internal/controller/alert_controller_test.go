package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Alisjj/farmPilot-sub001/internal/model"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// mockAlertService is a mock implementation of AlertService for testing
type mockAlertService struct {
	alerts        []model.Alert
	items         []model.InventoryItem
	created       int
	readID        uint
	dismissedID   uint
	evaluatedDate time.Time
	err           error
}

func (m *mockAlertService) EvaluateThresholds(_ context.Context, date time.Time, _ *string) (int, error) {
	m.evaluatedDate = date
	if m.err != nil {
		return 0, m.err
	}
	return m.created, nil
}

func (m *mockAlertService) EvaluateInventoryAlerts(_ context.Context) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.created, nil
}

func (m *mockAlertService) ListAlerts(_ context.Context, _ bool, _ *string) ([]model.Alert, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.alerts, nil
}

func (m *mockAlertService) MarkAlertRead(_ context.Context, id uint) error {
	m.readID = id
	return m.err
}

func (m *mockAlertService) DismissAlert(_ context.Context, id uint) error {
	m.dismissedID = id
	return m.err
}

func (m *mockAlertService) ListInventory(_ context.Context) ([]model.InventoryItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

func setupAlertRouter(c *AlertController) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	v1 := r.Group("/v1")
	{
		alerts := v1.Group("/alerts")
		{
			alerts.GET("", c.ListAlerts)
			alerts.POST("/evaluate", c.EvaluateThresholds)
			alerts.POST("/:id/read", c.MarkAlertRead)
			alerts.DELETE("/:id", c.DismissAlert)
		}
		inventory := v1.Group("/inventory")
		{
			inventory.GET("", c.ListInventory)
			inventory.POST("/check", c.CheckInventory)
		}
	}
	return r
}

func TestListAlerts_Success(t *testing.T) {
	mockService := &mockAlertService{
		alerts: []model.Alert{
			{AlertType: model.AlertMortalitySpike, Severity: model.SeverityCritical, Title: "Mortality count threshold breached"},
			{AlertType: model.AlertInventoryLow, Severity: model.SeverityMedium, Title: "Low stock: Layer Feed"},
		},
	}
	ctrl := NewAlertController(mockService, testLogger())
	router := setupAlertRouter(ctrl)

	req, _ := http.NewRequest("GET", "/v1/alerts?unread=true", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, w.Code)
	}

	var got struct {
		Alerts []model.Alert `json:"alerts"`
		Count  int           `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if got.Count != 2 || len(got.Alerts) != 2 {
		t.Errorf("Expected 2 alerts, got count=%d len=%d", got.Count, len(got.Alerts))
	}
}

func TestMarkAlertRead_Success(t *testing.T) {
	mockService := &mockAlertService{}
	ctrl := NewAlertController(mockService, testLogger())
	router := setupAlertRouter(ctrl)

	req, _ := http.NewRequest("POST", "/v1/alerts/17/read", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, w.Code)
	}
	if mockService.readID != 17 {
		t.Errorf("Expected alert id 17, got %d", mockService.readID)
	}
}

func TestMarkAlertRead_InvalidID(t *testing.T) {
	mockService := &mockAlertService{}
	ctrl := NewAlertController(mockService, testLogger())
	router := setupAlertRouter(ctrl)

	req, _ := http.NewRequest("POST", "/v1/alerts/abc/read", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestDismissAlert_NotFound(t *testing.T) {
	mockService := &mockAlertService{err: gorm.ErrRecordNotFound}
	ctrl := NewAlertController(mockService, testLogger())
	router := setupAlertRouter(ctrl)

	req, _ := http.NewRequest("DELETE", "/v1/alerts/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestDismissAlert_Success(t *testing.T) {
	mockService := &mockAlertService{}
	ctrl := NewAlertController(mockService, testLogger())
	router := setupAlertRouter(ctrl)

	req, _ := http.NewRequest("DELETE", "/v1/alerts/5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, w.Code)
	}
	if mockService.dismissedID != 5 {
		t.Errorf("Expected alert id 5, got %d", mockService.dismissedID)
	}
}

func TestEvaluateThresholds_Success(t *testing.T) {
	mockService := &mockAlertService{created: 2}
	ctrl := NewAlertController(mockService, testLogger())
	router := setupAlertRouter(ctrl)

	req, _ := http.NewRequest("POST", "/v1/alerts/evaluate?date=2026-05-10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, w.Code)
	}

	var got struct {
		AlertsCreated int `json:"alerts_created"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if got.AlertsCreated != 2 {
		t.Errorf("Expected 2 alerts created, got %d", got.AlertsCreated)
	}

	expected := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	if !mockService.evaluatedDate.Equal(expected) {
		t.Errorf("Expected date %v, got %v", expected, mockService.evaluatedDate)
	}
}

func TestEvaluateThresholds_InvalidDate(t *testing.T) {
	mockService := &mockAlertService{}
	ctrl := NewAlertController(mockService, testLogger())
	router := setupAlertRouter(ctrl)

	req, _ := http.NewRequest("POST", "/v1/alerts/evaluate?date=10/05/2026", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestListInventory_Success(t *testing.T) {
	mockService := &mockAlertService{
		items: []model.InventoryItem{
			{Name: "Layer Feed", Quantity: 120, ReorderLevel: 200},
		},
	}
	ctrl := NewAlertController(mockService, testLogger())
	router := setupAlertRouter(ctrl)

	req, _ := http.NewRequest("GET", "/v1/inventory", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, w.Code)
	}

	var got struct {
		Items []model.InventoryItem `json:"items"`
		Count int                   `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if got.Count != 1 {
		t.Errorf("Expected 1 item, got %d", got.Count)
	}
}

func TestCheckInventory_Success(t *testing.T) {
	mockService := &mockAlertService{created: 1}
	ctrl := NewAlertController(mockService, testLogger())
	router := setupAlertRouter(ctrl)

	req, _ := http.NewRequest("POST", "/v1/inventory/check", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, w.Code)
	}

	var got struct {
		AlertsCreated int `json:"alerts_created"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if got.AlertsCreated != 1 {
		t.Errorf("Expected 1 alert created, got %d", got.AlertsCreated)
	}
}
