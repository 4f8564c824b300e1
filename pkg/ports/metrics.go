package ports

import "time"

// MetricsCollector records service metrics
type MetricsCollector interface {
	ObserveRequest(method, route string, status int, duration time.Duration)
	IncEntitiesCreated(kind string)
	SetStoreSize(kind string, size int)
	ObserveDownstreamCall(op, outcome string, duration time.Duration)
	SetDownstreamUp(up bool)
	IncEventsPublished(eventType, status string)
}
