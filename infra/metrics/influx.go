package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/chargenet/roaming/core/metrics"
	"github.com/chargenet/roaming/infra/logger"
)

// InfluxSink writes dispatch outcomes to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordOperation writes each dispatched operation as a line protocol point.
func (s *InfluxSink) RecordOperation(recs []coremetrics.OperationRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range recs {
		p := write.NewPointWithMeasurement("roaming_operation").
			AddTag("operation", r.Operation).
			AddTag("kind", r.Kind.String()).
			AddTag("backend", r.Backend).
			AddTag("component", "dispatch_engine").
			AddField("location", r.Location).
			AddField("runtime_ms", float64(r.Runtime.Microseconds())/1000).
			SetTime(r.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordAuthorization writes each authorization decision.
func (s *InfluxSink) RecordAuthorization(recs []coremetrics.AuthRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range recs {
		p := write.NewPointWithMeasurement("roaming_authorization").
			AddTag("operation", r.Operation).
			AddTag("decision", r.Decision.String()).
			AddTag("cached", strconv.FormatBool(r.Cached)).
			AddTag("backend", r.Backend).
			AddTag("component", "dispatch_engine").
			AddField("runtime_ms", float64(r.Runtime.Microseconds())/1000).
			SetTime(r.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordCDRRouting writes the rollup of one CDR routing pass.
func (s *InfluxSink) RecordCDRRouting(rec coremetrics.CDRRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("roaming_cdr_batch").
		AddTag("overall", rec.Overall.String()).
		AddTag("component", "cdr_router").
		AddField("runtime_ms", float64(rec.Runtime.Microseconds())/1000)
	for kind, n := range rec.Outcomes {
		p = p.AddField(kind.String(), n)
	}
	p = p.SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}
