/*
Package observability turns coordinator lifecycle events and per-cycle snapshots
into Prometheus metrics and structured log records.

Hooks built here run inside the control cycle, so they only touch in-memory
collectors and loggers.
*/
package observability
