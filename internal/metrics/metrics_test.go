package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPCollectorRecordsMetrics(t *testing.T) {
	collector, err := NewHTTPCollector()
	if err != nil {
		t.Fatalf("NewHTTPCollector returned error: %v", err)
	}

	handlerInvoked := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerInvoked = true
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("ok"))
	})

	instrumented := collector.InstrumentHandler(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()

	instrumented.ServeHTTP(rr, req)

	if !handlerInvoked {
		t.Fatal("expected handler to be invoked")
	}
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusAccepted)
	}

	metricsReq := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	metricsRR := httptest.NewRecorder()
	collector.Handler().ServeHTTP(metricsRR, metricsReq)

	body := metricsRR.Body.String()
	if !strings.Contains(body, "advisor_http_requests_total") {
		t.Errorf("metrics output missing request counter:\n%s", body)
	}
	if !strings.Contains(body, `status="202"`) {
		t.Errorf("metrics output missing recorded status label:\n%s", body)
	}
}

func TestInstrumentedWriterFlushes(t *testing.T) {
	collector, err := NewHTTPCollector()
	if err != nil {
		t.Fatalf("NewHTTPCollector returned error: %v", err)
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := w.(http.Flusher); !ok {
			t.Error("instrumented writer does not implement http.Flusher")
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/stream", nil)
	collector.InstrumentHandler(handler).ServeHTTP(httptest.NewRecorder(), req)
}
