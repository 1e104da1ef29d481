// Package reporttemplate renders report pages as standalone HTML documents.
//
// Renderer executes a named template through a TemplateExecutor. The default
// executor compiles pongo2 (Django-style) templates; DefaultPageTemplate draws
// every block kind, including the risk gauge as inline SVG. The HTML is sized to
// the page layout so a browser capture at that viewport yields the page image.
package reporttemplate
