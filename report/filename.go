package report

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// DefaultFilename is the fixed name of the exported report.
const DefaultFilename = "EthiAI_Report.pdf"

// ContentTypePDF is the media type of the exported report.
const ContentTypePDF = "application/pdf"

type filenameData struct {
	Band      string
	Date      string
	Timestamp string
}

// RenderFilename expands a filename template and ensures the .pdf extension.
// An empty pattern yields DefaultFilename.
func RenderFilename(pattern string, score Score, now time.Time) (string, error) {
	if strings.TrimSpace(pattern) == "" {
		return DefaultFilename, nil
	}

	data := filenameData{
		Band:      string(score.Band),
		Date:      now.UTC().Format("20060102"),
		Timestamp: now.UTC().Format("20060102T150405Z"),
	}

	tmpl, err := template.New("filename").Parse(pattern)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	result := strings.TrimSpace(buf.String())
	if result == "" {
		return "", fmt.Errorf("empty filename")
	}
	if !strings.HasSuffix(strings.ToLower(result), ".pdf") {
		result += ".pdf"
	}
	return result, nil
}
