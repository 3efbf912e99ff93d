// Package appfs exposes this repo's embedded files.
package appfs

import "embed"

//go:embed migrations
var FS embed.FS
