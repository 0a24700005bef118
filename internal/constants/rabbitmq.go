package constants

// Ключи маршрутизации
const (
	RoutingKeyPropertyPublished = "property.published"
)

// Заголовки сообщений
const (
	HeaderTraceID      = "x-trace-id"
	HeaderEventType    = "x-event-type"
	HeaderEventVersion = "x-event-version"
)
