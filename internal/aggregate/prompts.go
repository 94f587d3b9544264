// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"bytes"
	"fmt"
	"text/template"
)

var comparisonPromptTmpl = template.Must(template.New("comparison").Parse(`Compare and analyze the following papers:

{{.Digest}}

Please analyze from the "{{.Axis}}" dimension and return results in JSON format:
{
    "comparison": {
        "paper1_title": "value/description",
        "paper2_title": "value/description",
        ...
    },
    "similarities": ["Similarity 1", "Similarity 2", ...],
    "differences": ["Difference 1", "Difference 2", ...],
    "analysis": "Overall analysis"
}

Be specific and detailed in your comparison.`))

// architectureComparisonPromptTmpl replaces the generic comparison prompt on
// the architecture axis. Architecture type is the single most error-prone
// field across a batch, so the prompt spells out the taxonomy and the
// inheritance rule for derived models.
var architectureComparisonPromptTmpl = template.Must(template.New("architecture-comparison").Parse(`Compare and analyze the MODEL ARCHITECTURES of the following papers:

{{.Digest}}

CRITICAL: Pay special attention to the architecture type. Check if each model is:
- **MoE (Mixture-of-Experts)**: Keywords like "mixture-of-experts", "MoE", "sparse activation", "expert routing", "X total parameters, Y activated parameters"
- **Dense**: Traditional transformer architecture where all parameters are activated
- **Hybrid**: Combination of MoE and Dense layers
- **Other**: Other architecture types

If a paper mentions that a model is "based on" or "built on" another model, **inherit that base model's architecture type**.

Please return results in JSON format:
{
    "comparison": {
        "paper1_title": "Architecture description including type (MoE/Dense/Hybrid/Other) and scale",
        "paper2_title": "Architecture description including type (MoE/Dense/Hybrid/Other) and scale",
        ...
    },
    "similarities": ["Similarity 1", "Similarity 2", ...],
    "differences": ["Difference 1", "Difference 2", ...],
    "analysis": "Overall analysis focusing on architectural differences"
}

Be precise and accurate. Double-check architecture types.`))

var timelinePromptTmpl = template.Must(template.New("timeline").Parse(`Construct a technology development timeline based on the following papers:

{{.Digest}}

Consider:
1. Publication time (if available)
2. Technical evolution relationships
3. Citation relationships

Please return results in JSON format:
{
    "timeline": [
        {
            "paper_title": "Paper title",
            "date": "Date (can be inferred, format: YYYY or YYYY-MM)",
            "key_contribution": "Main contribution of this paper",
            "order": 1
        },
        ...
    ]
}

Order should reflect logical development of the technology, not necessarily chronological.`))

var trendPromptTmpl = template.Must(template.New("trends").Parse(`Analyze the technology trends shown across the following papers:

{{.Digest}}

Please identify 3-5 main trends and return results in JSON format:
{
    "trends": [
        {
            "trend_name": "Trend name",
            "description": "Detailed description",
            "evidence": ["Evidence 1 (which paper demonstrates this)", ...],
            "papers": ["Related paper 1", ...]
        },
        ...
    ],
    "common_themes": ["Theme 1", "Theme 2", ...],
    "key_differences": ["Difference 1", "Difference 2", ...],
    "future_directions": ["Direction 1", "Direction 2", ...]
}`))

var overallSummaryPromptTmpl = template.Must(template.New("overall-summary").Parse(`Based on the analysis results of the following papers, generate an overall summary:

{{.Digest}}

Comparison results:
{{.Comparison}}

Trend analysis:
{{.Trends}}

Please generate a comprehensive summary (300-500 words) in {{.Language}}, including:
1. Main research theme of this paper collection
2. Key technical developments and evolution
3. Current research hotspots and challenges
4. Future research directions

Output the summary directly, no JSON format needed.`))

var customAnalysisPromptTmpl = template.Must(template.New("custom-analysis").Parse(`Based on the following papers, please analyze according to the user's requirement:

User Requirement: {{.Instruction}}

Papers Information:
{{.Digest}}

Please provide a comprehensive analysis based on the user's requirement. Output in {{.Language}}, be detailed and specific.`))

var compareTwoPromptTmpl = template.Must(template.New("compare-two").Parse(`Perform a detailed comparison of the following two papers:

Paper 1: {{.Title1}}
Abstract: {{.Abstract1}}
Method: {{.Method1}}
Innovations: {{.Innovations1}}
Results: {{.Results1}}

Paper 2: {{.Title2}}
Abstract: {{.Abstract2}}
Method: {{.Method2}}
Innovations: {{.Innovations2}}
Results: {{.Results2}}

Please return results in JSON format:
{
    "similarities": ["Similarity 1", "Similarity 2", ...],
    "differences": ["Difference 1", "Difference 2", ...],
    "paper1_advantages": ["Advantage 1", ...],
    "paper2_advantages": ["Advantage 1", ...],
    "conclusion": "Overall comparison conclusion"
}`))

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
