// Package web embeds the static assets served by the dashboard.
package web

import "embed"

// Templates holds the HTML templates rendered by the HTTP layer.
//
//go:embed templates/*.html
var Templates embed.FS
