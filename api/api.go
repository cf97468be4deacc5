// Package api carries the OpenAPI document served next to the Swagger UI.
package api

import _ "embed"

//go:embed openapi.yaml
var OpenAPI []byte
