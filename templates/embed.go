// Package templates embeds the HTML templates so the binary runs without a
// checkout. Dev mode reads them from disk instead.
package templates

import "embed"

//go:embed layouts pages partials fragments
var FS embed.FS
