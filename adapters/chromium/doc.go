// Package reportchromium rasterizes report pages with a shared headless Chromium.
//
// Each page is rendered to HTML by a PageRenderer, loaded into a fresh tab at
// the page layout viewport with the configured device scale factor, and
// captured as a PNG screenshot clipped to the page.
package reportchromium
