package report

// Sentinel bullets shown when a list would otherwise be empty.
const (
	NoRecommendationsSentinel = "No high-risk issues identified in your responses."
	NoMeritsSentinel          = "No merits were identified based on the selected responses."
)

// Content holds the static narrative of the report.
type Content struct {
	CoverTitle         string
	SectionNames       []string
	ExecutiveSummary   []string
	ExecutiveHighlight []string
	ScoreHeading       string
	GapsHeading        string
	MeritsHeading      string
	ConclusionHeading  string
	Conclusion         []string
	DateLayout         string
	Gauge              GaugeChart
}

// DefaultContent returns the EthiAI compliance report narrative.
func DefaultContent() Content {
	return Content{
		CoverTitle: "COMPLIANCE RISK REPORT",
		SectionNames: []string{
			"Executive Summary",
			"Overall EthiAI Risk Score",
			"Gaps & Recommendations",
			"Merits",
			"Conclusion",
		},
		ExecutiveSummary: []string{
			"The EU AI Act is the world's first AI regulation, designed to ensure AI systems deployed within the European Union are ethical, safe, and compliant with fundamental rights.",
			"It categorizes AI systems into risk levels (prohibited, high-risk, limited risk, and minimal risk) and imposes obligations accordingly.",
			"The act applies to providers, deployers, and users of AI systems operating within the EU or impacting EU citizens.",
			"The EU AI Act classifies AI systems based on their risk levels, ranging from minimal risk to prohibited practices that pose severe threats to human rights and safety. The Act applies to organizations developing, deploying, or using AI systems within the EU.",
			"EthiAI, developed by RisKey, evaluates AI compliance risks under the EU AI Act. The platform provides organizations with tools to assess:",
		},
		ExecutiveHighlight: []string{
			"Compliance Standing Reports to help businesses understand their risk level and legal obligations.",
			"Actionable Recommendations to guide AI providers and deployers toward regulatory compliance.",
			"Comprehensive Compliance Dashboard offering real-time insights into AI risk levels.",
		},
		ScoreHeading:      "OVERALL ETHIAI RISK SCORE",
		GapsHeading:       "GAPS & RECOMMENDATIONS",
		MeritsHeading:     "MERITS",
		ConclusionHeading: "CONCLUSION",
		Conclusion: []string{
			"Thank you for completing the EthiAI Compliance Report. We're here to support you in transforming your organization's AI potential into actionable success. Our team of experts is ready to provide guidance tailored to your needs.",
		},
		DateLayout: "01/02/2006",
		Gauge: GaugeChart{
			Levels: 20,
			Colors: []string{"#47a747", "#FF8C00", "#cb3e3e"},
		},
	}
}

func (c Content) withDefaults() Content {
	defaults := DefaultContent()
	if c.CoverTitle == "" {
		c.CoverTitle = defaults.CoverTitle
	}
	if len(c.SectionNames) == 0 {
		c.SectionNames = defaults.SectionNames
	}
	if len(c.ExecutiveSummary) == 0 {
		c.ExecutiveSummary = defaults.ExecutiveSummary
	}
	if len(c.ExecutiveHighlight) == 0 {
		c.ExecutiveHighlight = defaults.ExecutiveHighlight
	}
	if c.ScoreHeading == "" {
		c.ScoreHeading = defaults.ScoreHeading
	}
	if c.GapsHeading == "" {
		c.GapsHeading = defaults.GapsHeading
	}
	if c.MeritsHeading == "" {
		c.MeritsHeading = defaults.MeritsHeading
	}
	if c.ConclusionHeading == "" {
		c.ConclusionHeading = defaults.ConclusionHeading
	}
	if len(c.Conclusion) == 0 {
		c.Conclusion = defaults.Conclusion
	}
	if c.DateLayout == "" {
		c.DateLayout = defaults.DateLayout
	}
	if c.Gauge.Levels == 0 {
		c.Gauge.Levels = defaults.Gauge.Levels
	}
	if len(c.Gauge.Colors) == 0 {
		c.Gauge.Colors = defaults.Gauge.Colors
	}
	return c
}
