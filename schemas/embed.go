// Package schemas embeds the JSON Schemas for documents accepted at the
// matcher's boundaries.
package schemas

import "embed"

// FS holds every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS

// Schema names, without the .schema.json suffix
const (
	Guardrails = "guardrails"
	Tradeoffs  = "tradeoffs"
)
