// Package reportcanvas rasterizes report pages without a browser.
//
// Pages are drawn onto an RGBA canvas with the Go fonts and encoded as PNG.
// Every call builds its own font faces and canvas, so a Rasterizer may be
// shared across goroutines.
package reportcanvas
