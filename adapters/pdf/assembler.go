package reportpdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	gofpdf "github.com/go-pdf/fpdf"
	"github.com/goliatone/go-riskreport/report"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
)

// Assembler places one snapshot per PDF page.
type Assembler struct {
	OutputWidth float64
	Verify      bool
	Compress    bool
	Title       string
	Creator     string
	Now         func() time.Time
}

// New returns an assembler at the A4 width with output verification enabled.
func New() *Assembler {
	return &Assembler{
		OutputWidth: report.OutputWidth,
		Verify:      true,
		Compress:    true,
		Title:       "Compliance Risk Report",
		Creator:     "EthiAI",
		Now:         time.Now,
	}
}

// Assemble renders snapshots, in the order given, into a multi-page PDF.
func (a *Assembler) Assemble(ctx context.Context, snapshots []report.RasterSnapshot) (report.ExportedDocument, error) {
	if a == nil {
		a = New()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return report.ExportedDocument{}, err
	}
	if err := report.ValidateSnapshots(snapshots); err != nil {
		return report.ExportedDocument{}, err
	}

	placements := report.PlacePages(snapshots, a.OutputWidth)
	first := placements[0]
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: first.Width, Ht: first.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(a.Compress)
	if a.Title != "" {
		pdf.SetTitle(a.Title, true)
	}
	if a.Creator != "" {
		pdf.SetCreator(a.Creator, true)
	}
	if a.Now != nil {
		pdf.SetCreationDate(a.Now())
	}

	for i, snapshot := range snapshots {
		if err := ctx.Err(); err != nil {
			return report.ExportedDocument{}, err
		}
		placement := placements[i]
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: placement.Width, Ht: placement.Height})

		name := fmt.Sprintf("page-%d", snapshot.SourcePageIndex)
		options := gofpdf.ImageOptions{ImageType: imageType(snapshot.ImageType)}
		pdf.RegisterImageOptionsReader(name, options, bytes.NewReader(snapshot.ImageBytes))
		if pdf.Err() {
			return report.ExportedDocument{}, report.PageError(report.KindAssembly, snapshot.SourcePageIndex, "snapshot image rejected", pdf.Error())
		}
		pdf.ImageOptions(name, 0, 0, placement.Width, placement.Height, false, options, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return report.ExportedDocument{}, report.NewError(report.KindAssembly, "pdf output failed", err)
	}

	if a.Verify {
		if err := verify(buf.Bytes(), len(snapshots)); err != nil {
			return report.ExportedDocument{}, err
		}
	}

	return report.ExportedDocument{
		Filename:    report.DefaultFilename,
		ContentType: report.ContentTypePDF,
		Pages:       placements,
		Bytes:       buf.Bytes(),
	}, nil
}

// verify checks the PDF structure and that it holds exactly pages pages.
func verify(data []byte, pages int) error {
	rs := bytes.NewReader(data)
	if err := pdfapi.Validate(rs, nil); err != nil {
		return report.NewError(report.KindAssembly, "assembled pdf is invalid", err)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return report.NewError(report.KindAssembly, "assembled pdf is unreadable", err)
	}
	count, err := pdfapi.PageCount(rs, nil)
	if err != nil {
		return report.NewError(report.KindAssembly, "assembled pdf page count failed", err)
	}
	if count != pages {
		return report.NewError(report.KindAssembly, fmt.Sprintf("assembled pdf has %d pages, expected %d", count, pages), nil)
	}
	return nil
}

func imageType(value string) string {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "JPG", "JPEG":
		return "JPG"
	case "GIF":
		return "GIF"
	default:
		return "PNG"
	}
}
