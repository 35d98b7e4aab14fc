// Package educonnect provides the embedded page templates and static assets.
package educonnect

import "embed"

// TemplateFS holds web/templates: layout.tmpl, partials/ and pages/.
//
//go:embed all:web/templates
var TemplateFS embed.FS

// StaticFS holds web/static, served under /static/.
//
//go:embed all:web/static
var StaticFS embed.FS
