package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/chargenet/roaming/core/metrics"
	"github.com/chargenet/roaming/core/model"
)

func TestInfluxSink_RecordOperation(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()
	rec := coremetrics.OperationRecord{
		Operation: "remote_start",
		Kind:      model.KindSuccess,
		Backend:   "hub-1",
		Location:  "evse:DE*GEF*E1234*1",
		Runtime:   150 * time.Millisecond,
		Time:      now,
	}

	if err := sink.RecordOperation([]coremetrics.OperationRecord{rec}); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("roaming_operation").
		AddTag("operation", "remote_start").
		AddTag("kind", "success").
		AddTag("backend", "hub-1").
		AddTag("component", "dispatch_engine").
		AddField("location", "evse:DE*GEF*E1234*1").
		AddField("runtime_ms", 150.0).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if strings.TrimSpace(body) != expected {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
}
