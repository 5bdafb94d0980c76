// Package web holds the server-rendered pages and their static assets.
package web

import "embed"

// TemplatesFS holds the page layouts and HTMX partials.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the stylesheet and the small page script.
//
//go:embed static/*
var StaticFS embed.FS
