// Package report turns a questionnaire assessment into an exported compliance
// report.
//
// The pipeline is linear: ComputeScore/DefaultScorer derives the percentage and
// risk band, Builder lays out the six logical pages, RasterizeAll renders each
// page through a Rasterizer into a RasterSnapshot, and an Assembler places the
// snapshots one per page into a single PDF. Exporter runs the stages, delivers
// the finished document to an ArtifactStore and/or io.Writer, and records run
// history. Rasterizer and Assembler backends live under adapters/.
package report
