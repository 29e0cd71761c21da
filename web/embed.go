// Package web embeds the dashboard templates and static assets.
package web

import "embed"

// TemplatesFS holds the page and its partials.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

//go:embed static/*
var StaticFS embed.FS
