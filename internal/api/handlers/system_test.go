package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/advisorhq/portfolio-advisor/internal/testutil"
)

func TestMeta(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewSystemHandler(db)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	handler.Meta(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp MetaResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Service != "portfolio-advisor" || resp.Version != Version {
		t.Errorf("response = %+v", resp)
	}
	if len(resp.Endpoints) == 0 {
		t.Error("endpoint list is empty")
	}
}

func TestHealth(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewSystemHandler(db)

	t.Run("healthy when the database responds", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rr := httptest.NewRecorder()

		handler.Health(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rr.Code)
		}

		var resp HealthResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to parse response: %v", err)
		}
		if resp.Status != "healthy" || resp.Database != "connected" {
			t.Errorf("response = %+v", resp)
		}
	})

	t.Run("unhealthy when the database is closed", func(t *testing.T) {
		db.Close()

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rr := httptest.NewRecorder()

		handler.Health(rr, req)

		if rr.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", rr.Code)
		}

		var resp HealthResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to parse response: %v", err)
		}
		if resp.Status != "unhealthy" {
			t.Errorf("response = %+v", resp)
		}
	})
}
