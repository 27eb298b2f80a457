package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Probe deadlines. Readiness answers fast for orchestrator polling; the
// detailed report tolerates slower dependencies.
const (
	readinessTimeout = 5 * time.Second
	detailedTimeout  = 10 * time.Second
)

// LivenessHandler answers liveness probes. It only proves the process is
// serving requests; dependencies are the readiness endpoint's concern.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// ReadinessHandler answers readiness probes by running every registered
// check. Degraded still reports ready: the server keeps serving on cached
// key material or a recovering store.
func ReadinessHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		status := agg.OverallStatus(agg.CheckAll(ctx))

		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(probeCode(status))
		_, _ = w.Write([]byte(probeBody(status)))
	}
}

func probeCode(s Status) int {
	if s == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func probeBody(s Status) string {
	switch s {
	case StatusHealthy:
		return "OK"
	case StatusDegraded:
		return "DEGRADED"
	default:
		return "UNHEALTHY"
	}
}

// statusReport is the detailed endpoint's JSON document.
type statusReport struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]checkReport `json:"checks,omitempty"`
}

type checkReport struct {
	Status   string         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// DetailedHandler serves the per-check report for operators.
func DetailedHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), detailedTimeout)
		defer cancel()

		results := agg.CheckAll(ctx)
		status := agg.OverallStatus(results)

		report := statusReport{
			Status:    status.String(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    make(map[string]checkReport, len(results)),
		}
		for name, result := range results {
			check := checkReport{
				Status:   result.Status.String(),
				Message:  result.Message,
				Duration: result.Duration.String(),
				Details:  result.Details,
			}
			if result.Error != nil {
				check.Error = result.Error.Error()
			}
			report.Checks[name] = check
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(probeCode(status))
		_ = json.NewEncoder(w).Encode(report)
	}
}

// RegisterHandlers mounts the probe endpoints on the mux.
func RegisterHandlers(mux *http.ServeMux, agg *Aggregator) {
	mux.HandleFunc("/healthz", LivenessHandler())
	mux.HandleFunc("/readyz", ReadinessHandler(agg))
	mux.HandleFunc("/health", DetailedHandler(agg))
}
