package web

import "embed"

// Templates holds the HTML templates for the page, fragments and admin.
//
//go:embed templates/*.html
var Templates embed.FS

// Static holds the stylesheet and client script.
//
//go:embed static
var Static embed.FS
