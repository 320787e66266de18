// Package openapi embeds the OpenAPI document for the Wanderlogue API.
// The HTTP server serves it at /openapi.yaml.
package openapi

import _ "embed"

// Document contains the raw bytes of openapi.yaml, embedded at compile time.
// Serving it from the binary keeps the published contract and the running
// code in the same release.
//
//go:embed openapi.yaml
var Document []byte
