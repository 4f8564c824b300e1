// Package ports declares the interfaces the application layer depends on.
//
// Adapters under pkg/adapters implement them:
//   - Store: storage/memory
//   - EventBus: events/memory, events/redis
//   - MetricsCollector: metrics/prometheus
package ports
