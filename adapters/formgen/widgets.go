package reportformgen

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-riskreport/report"
)

// Field defines a form field for formgen-style UIs.
type Field struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Required bool     `json:"required,omitempty"`
	Min      *int     `json:"min,omitempty"`
	Options  []string `json:"options,omitempty"`
	Hint     string   `json:"hint,omitempty"`
}

// Form defines the report request form widget.
type Form struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Action      string  `json:"action"`
	Method      string  `json:"method"`
	SubmitLabel string  `json:"submit_label"`
	Fields      []Field `json:"fields"`
}

// TableColumn defines a column in the history table.
type TableColumn struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// TableAction defines a table action that maps to an HTTP endpoint.
type TableAction struct {
	Label       string `json:"label"`
	Method      string `json:"method"`
	URLTemplate string `json:"url_template"`
}

// Table defines a history widget.
type Table struct {
	ID      string        `json:"id"`
	Title   string        `json:"title"`
	DataURL string        `json:"data_url"`
	Columns []TableColumn `json:"columns"`
	Actions []TableAction `json:"actions,omitempty"`
}

// Theme captures theme tokens shared by the UI and the rendered report.
type Theme struct {
	Name   string            `json:"name"`
	Tokens map[string]string `json:"tokens"`
}

// UI bundles the widgets needed for report request and history views.
type UI struct {
	RequestForm Form  `json:"request_form"`
	History     Table `json:"history"`
	Theme       Theme `json:"theme"`
}

// DefaultUI returns the formgen-style UI contract for the report API.
func DefaultUI(basePath string) UI {
	basePath = strings.TrimRight(basePath, "/")
	if basePath == "" {
		basePath = "/api"
	}
	return UI{
		RequestForm: ReportRequestForm(basePath),
		History:     ReportHistoryTable(basePath),
		Theme:       DefaultTheme(),
	}
}

// ReportRequestForm builds a form definition for generating a report.
func ReportRequestForm(basePath string) Form {
	zero := 0
	return Form{
		ID:          "report-request",
		Title:       "Generate Risk Report",
		Action:      basePath + "/report",
		Method:      "POST",
		SubmitLabel: "Download " + report.DefaultFilename,
		Fields: []Field{
			{Name: "risk_count", Label: "Risk answers", Type: "number", Required: true, Min: &zero},
			{Name: "total_questions", Label: "Questions answered", Type: "number", Required: true, Min: &zero},
			{Name: "comments", Label: "Comments", Type: "text-list", Hint: "One recommendation per line"},
		},
	}
}

// ReportHistoryTable builds a table definition for export history.
func ReportHistoryTable(basePath string) Table {
	return Table{
		ID:      "report-history",
		Title:   "Report History",
		DataURL: basePath + "/exports",
		Columns: []TableColumn{
			{Key: "ID", Label: "ID"},
			{Key: "State", Label: "Status"},
			{Key: "Percentage", Label: "Risk %"},
			{Key: "Band", Label: "Risk level"},
			{Key: "Pages", Label: "Pages"},
			{Key: "CreatedAt", Label: "Created"},
		},
		Actions: []TableAction{
			{Label: "Download", Method: "GET", URLTemplate: fmt.Sprintf("%s/exports/{id}/download", basePath)},
		},
	}
}

// DefaultTheme mirrors the report palette.
func DefaultTheme() Theme {
	return Theme{
		Name: "ethiai",
		Tokens: map[string]string{
			"background": "#080029",
			"text":       "#ffffff",
			"heading":    "#00bfff",
			"accent":     "#33cae5",
			"low":        "#47a747",
			"moderate":   "#ff8c00",
			"high":       "#cb3e3e",
		},
	}
}
