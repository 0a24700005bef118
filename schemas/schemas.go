package schemas

import "embed"

// SchemasFS содержит JSON-схемы входящих запросов и исходящих событий.
//
//go:embed events requests
var SchemasFS embed.FS
