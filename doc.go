// Package nutils provides a collection of utility packages for working with
// nested dynamic data and the everyday plumbing around it: caching,
// configuration, validation, file IO, and concurrency helpers.
//
// This module contains the following packages:
//
// NESTED DATA:
//
//   - nested: Typed tree model (maps, lists, scalars) with path-based
//     Get/Set/Insert/Pop, predicate filtering, flatten/unflatten with
//     composite keys, recursive merge, and conversion to and from native
//     Go containers
//   - note: Thread-safe container wrapping a nested tree with path-based
//     accessors, deep updates, and JSON marshaling
//
// CACHING:
//
//   - cache: Generic type-safe in-memory caching with TTL, LRU eviction,
//     request-coalescing memoization, msgpack snapshot persistence, and
//     Prometheus metrics
//
// CONFIGURATION & VALIDATION:
//
//   - config: Layered configuration loading (defaults, JSON/TOML/YAML
//     files, environment variables) onto a nested tree with typed getters,
//     schema validation, secret redaction, and file watching
//   - validate: Composable value validators (required, type, range, length,
//     pattern, email, URL, choice) with schema validation for dynamic maps
//   - coerce: Permissive type coercion between scalars, slices, maps, JSON,
//     and durations
//
// CONCURRENCY & FLOW CONTROL:
//
//   - taskrunner: Concurrent task execution with bounded parallelism,
//     ordered parallel mapping, and batched processing
//   - limiter: Per-key rate limiting and token-bucket throttling
//   - retry: Retrying with exponential backoff, jitter, and per-attempt
//     timeouts
//
// FILES & LOGGING:
//
//   - fileutil: Atomic writes, safe reads, JSON files, unique path
//     generation, and directory scanning
//   - logging: slog-based logger setup with context-carried fields
//
// All packages can be used independently or composed together; error
// handling follows errors.Is-friendly sentinel and wrapped errors
// throughout.
package nutils
