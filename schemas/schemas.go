// Package schemas embeds the JSON schemas of published events and seed files.
package schemas

import "embed"

//go:embed events seeds
var SchemasFS embed.FS
