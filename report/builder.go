package report

import (
	"fmt"
	"time"
)

// DefaultLayout is an A4 sheet at 96 DPI, shared by every page.
var DefaultLayout = PageLayout{Width: 794, Height: 1123}

// Builder assembles the logical report pages from a score and comments.
type Builder struct {
	Content Content
	Layout  PageLayout
	Now     func() time.Time
}

// NewBuilder creates a builder with the default narrative and layout.
func NewBuilder() *Builder {
	return &Builder{
		Content: DefaultContent(),
		Layout:  DefaultLayout,
		Now:     time.Now,
	}
}

// Build returns the six report pages in canonical order. It performs no I/O and
// does not re-validate the score.
func (b *Builder) Build(score Score, comments []string) ReportDocument {
	content := DefaultContent()
	layout := DefaultLayout
	now := time.Now
	if b != nil {
		content = b.Content.withDefaults()
		if b.Layout.Width > 0 && b.Layout.Height > 0 {
			layout = b.Layout
		}
		if b.Now != nil {
			now = b.Now
		}
	}
	generatedAt := now()

	pages := []ReportPage{
		coverPage(content, generatedAt),
		tableOfContentsPage(content),
		executiveSummaryPage(content),
		scorePage(content, score, comments),
		meritsPage(content),
		conclusionPage(content),
	}
	for i := range pages {
		pages[i].Index = i
		pages[i].Layout = layout
	}

	return ReportDocument{
		Pages:       pages,
		Score:       score,
		GeneratedAt: generatedAt,
	}
}

// Validate checks the document invariants relied on downstream.
func (d ReportDocument) Validate() error {
	if len(d.Pages) == 0 {
		return NewError(KindInternal, "report document has no pages", nil)
	}
	if d.Pages[0].Kind != PageCover {
		return NewError(KindInternal, fmt.Sprintf("report document must start with cover, got %s", d.Pages[0].Kind), nil)
	}
	if last := d.Pages[len(d.Pages)-1]; last.Kind != PageConclusion {
		return NewError(KindInternal, fmt.Sprintf("report document must end with conclusion, got %s", last.Kind), nil)
	}
	layout := d.Pages[0].Layout
	for i, page := range d.Pages {
		if page.Index != i {
			return NewError(KindInternal, fmt.Sprintf("page %d carries index %d", i, page.Index), nil)
		}
		if page.Layout != layout {
			return NewError(KindInternal, fmt.Sprintf("page %d layout %dx%d differs from %dx%d", i, page.Layout.Width, page.Layout.Height, layout.Width, layout.Height), nil)
		}
	}
	if layout.Width <= 0 || layout.Height <= 0 {
		return NewError(KindInternal, "report layout must have positive dimensions", nil)
	}
	return nil
}

// Recommendations returns the bullets rendered under the gaps heading.
func Recommendations(comments []string) []string {
	if len(comments) == 0 {
		return []string{NoRecommendationsSentinel}
	}
	items := make([]string, len(comments))
	copy(items, comments)
	return items
}

func coverPage(content Content, generatedAt time.Time) ReportPage {
	return ReportPage{
		Kind:  PageCover,
		Title: content.CoverTitle,
		Blocks: []Block{
			{Kind: BlockHeading, Text: content.CoverTitle, Emphasis: EmphasisTitle},
			{Kind: BlockDate, Text: "Generated on " + generatedAt.Local().Format(content.DateLayout), Emphasis: EmphasisCentered},
		},
	}
}

func tableOfContentsPage(content Content) ReportPage {
	items := make([]string, len(content.SectionNames))
	copy(items, content.SectionNames)
	return ReportPage{
		Kind:  PageTableOfContents,
		Title: "TABLE OF CONTENTS",
		Blocks: []Block{
			{Kind: BlockBullets, Items: items},
		},
	}
}

func executiveSummaryPage(content Content) ReportPage {
	blocks := make([]Block, 0, len(content.ExecutiveSummary)+1)
	for _, text := range content.ExecutiveSummary {
		blocks = append(blocks, Block{Kind: BlockParagraph, Text: text})
	}
	highlights := make([]string, len(content.ExecutiveHighlight))
	copy(highlights, content.ExecutiveHighlight)
	blocks = append(blocks, Block{Kind: BlockBullets, Items: highlights})
	return ReportPage{
		Kind:   PageExecutiveSummary,
		Title:  "EXECUTIVE SUMMARY",
		Blocks: blocks,
	}
}

func scorePage(content Content, score Score, comments []string) ReportPage {
	gauge := content.Gauge
	gauge.Percent = float64(score.Percentage) / 100
	gauge.Colors = append([]string(nil), content.Gauge.Colors...)
	return ReportPage{
		Kind:  PageScoreAndRecommendations,
		Title: content.ScoreHeading,
		Blocks: []Block{
			{Kind: BlockChart, Chart: &gauge},
			{Kind: BlockParagraph, Text: fmt.Sprintf("Total Risk Score: %d%%", score.Percentage), Emphasis: EmphasisStrong},
			{Kind: BlockParagraph, Text: "Risk Level: " + score.Band.Label(), Emphasis: EmphasisCentered},
			{Kind: BlockHeading, Text: content.GapsHeading},
			{Kind: BlockBullets, Items: Recommendations(comments)},
		},
	}
}

func meritsPage(content Content) ReportPage {
	return ReportPage{
		Kind:  PageMerits,
		Title: content.MeritsHeading,
		Blocks: []Block{
			{Kind: BlockBullets, Items: []string{NoMeritsSentinel}},
		},
	}
}

func conclusionPage(content Content) ReportPage {
	blocks := make([]Block, 0, len(content.Conclusion))
	for _, text := range content.Conclusion {
		blocks = append(blocks, Block{Kind: BlockParagraph, Text: text})
	}
	return ReportPage{
		Kind:   PageConclusion,
		Title:  content.ConclusionHeading,
		Blocks: blocks,
	}
}
