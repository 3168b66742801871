// Package content embeds the localized purchase page documents.
package content

import "embed"

//go:embed *.yaml
var FS embed.FS
