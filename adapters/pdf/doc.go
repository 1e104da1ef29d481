// Package reportpdf assembles page snapshots into a single PDF.
//
// Each snapshot becomes one page sized to its placement: the A4 width in
// points and a height that keeps the snapshot's aspect ratio. The output is
// checked with pdfcpu before it is returned.
package reportpdf
