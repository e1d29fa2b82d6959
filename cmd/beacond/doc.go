// Package main hosts the beacon service entrypoint.
//
// Architecture overview:
//   - HTTP surface: internal/api.Server exposes the catch-all tracking routes plus health and metrics
//     endpoints. Requests are reduced to a transport-free dispatch.Request; every response to tracking
//     traffic is a 200 with a permissive CORS header, including on failure.
//   - Dispatch pipeline: internal/dispatch classifies the URL (four-character project slug, optional
//     image-pixel extension), resolves the project config through the cache-aside resolver, assembles
//     an access event from edge headers and the request body, and appends it to the event store.
//   - Caching: project configs are resolved via Redis (or an in-process map for development) in front
//     of Postgres; cache misses fan in two queries (project row plus allow-listed extra argument
//     names) and write the merged config back without a TTL.
//   - Side channels: Telegram notifications fire per project off the request path, and events are
//     optionally fanned out to a Pub/Sub topic. Both are best effort; failures land in the fault hub,
//     which feeds the log and Prometheus sinks without ever touching the response.
//   - Configuration & plumbing: Viper populates config from env/files with the BEACON_ prefix; zap
//     provides structured logging; Prometheus metrics are exported at /metrics.
//
// Operational notes:
//   - Shutdown: SIGTERM drains the HTTP server, then waits for in-flight notification and publish
//     goroutines, then closes the fault hub. The drain window is server.shutdown_timeout_seconds.
//   - Failure posture: the service answers tracking requests even when Postgres, Redis, Telegram, or
//     Pub/Sub are down. Watch beacon_faults_total to see what it is swallowing.
//
// Run locally: go run ./cmd/beacond -config config.yaml (or rely solely on env overrides such as
// BEACON_DB_DSN and BEACON_CACHE_BACKEND).
package main
