// Package locales embeds the UI translation dictionaries.
package locales

import "embed"

//go:embed *.json
var FS embed.FS
