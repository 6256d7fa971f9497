// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

/*
Package metrics provides Prometheus metrics for the recommendation service.

All collectors are registered with the default registry through promauto
and exposed at /metrics in the Prometheus text format:

	curl http://localhost:8000/metrics

# Available Metrics

API:
  - ractso_api_requests_total: Requests (counter), labels method, endpoint, status_code
  - ractso_api_request_duration_seconds: Latency (histogram), labels method, endpoint
  - ractso_api_active_requests: In-flight requests (gauge)
  - ractso_api_rate_limit_hits_total: Rate-limited requests (counter)

Recommendation:
  - ractso_views_tracked_total: View events applied to the model
  - ractso_recommendation_requests_total: Pages served, label source
  - ractso_recommendation_fallbacks_total: Degradations to popular posts
  - ractso_recommendation_duration_seconds: Page latency, label source
  - ractso_model_users, ractso_model_posts, ractso_model_interactions: Model size

Warm start:
  - ractso_warm_start_runs_total: Runs by final state
  - ractso_warm_start_records: Records read by the last run
  - ractso_warm_start_duration_seconds: Rebuild duration

Persistence:
  - ractso_sink_messages_total, ractso_sink_failures_total: Per sink
  - ractso_circuit_breaker_*: Breaker state, results and transitions

The write-ahead log registers its own ractso_wal_* collectors in the wal
package.

# Usage

	start := time.Now()
	page, err := engine.Recommend(ctx, userID, 1, 10)
	metrics.RecordRecommendation(string(page.Source), page.Fallback, time.Since(start))

# Thread Safety

All functions are safe for concurrent use.
*/
package metrics
