// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"bytes"
	"fmt"
	"text/template"
)

// dimensionPrompts maps each analysis dimension to its extraction prompt.
// Each prompt receives the dimension's text window and names the exact JSON
// fields expected back, so responses decode straight into the record types.
var dimensionPrompts = map[string]*template.Template{
	"background": template.Must(template.New("background").Parse(`Analyze the research background of this paper and extract the following information:

Paper content:
{{.Content}}

Please return results in JSON format, including:
{
    "research_field": "Research field and domain",
    "problem_definition": "Problem being solved",
    "motivation": "Research motivation",
    "existing_limitations": "Limitations of existing methods",
    "research_goals": "Research goals"
}

Be concise and accurate in your extraction.`)),

	"technology": template.Must(template.New("technology").Parse(`Analyze the technical methods of this paper and extract the following information:

Paper content:
{{.Content}}

Please return results in JSON format, including:
{
    "method_overview": "Overall description of the method",
    "innovations": ["Innovation 1", "Innovation 2", ...],
    "key_designs": ["Key design 1", "Key design 2", ...],
    "implementation_details": "Important implementation details",
    "architecture": "Model/system architecture description",
    "architecture_type": "Specify if the model is: MoE (Mixture-of-Experts), Dense, Hybrid, or Other. IMPORTANT: Be precise - check for keywords like 'MoE', 'Mixture-of-Experts', 'sparse activation', 'expert routing', 'total parameters vs activated parameters'. If a model is based on another model (e.g., 'built on Model-X'), inherit that model's architecture type.",
    "model_scale": "Total parameters and activated parameters (if MoE architecture). Example format: 'XXB total, YYB activated per token' or 'ZZB parameters' for dense models",
    "model_type": "CRITICAL - Specify the PRIMARY model type. Choose ONE from: LLM (text-only language model), Multimodal (handles multiple modalities like vision+language, audio+text), Vision (image/video-focused), Audio (speech/sound-focused), Code (specialized for code), Reasoning (specialized for reasoning tasks), or Other. IMPORTANT: Do NOT confuse models from the same series - check the paper content carefully. For example, Model-VL is Multimodal while Model-LLM is LLM.",
    "application_scenarios": ["Primary application 1", "Primary application 2", ...]
}

Focus on core technical contributions. Pay special attention to:
1. Correctly identifying the architecture type
2. DISTINGUISHING the model type - especially between LLM and Multimodal models
3. Identifying the PRIMARY application scenarios based on the paper's focus`)),

	"experiment": template.Must(template.New("experiment").Parse(`Analyze the experimental design of this paper and extract the following information:

Paper content:
{{.Content}}

Please return results in JSON format, including:
{
    "datasets": ["Dataset 1", "Dataset 2", ...],
    "metrics": ["Evaluation metric 1", "Evaluation metric 2", ...],
    "baselines": ["Baseline method 1", "Baseline method 2", ...],
    "setup": "Experimental setup description",
    "ablation_studies": "Description of ablation studies (if any)"
}

Include specific dataset names and metrics.`)),

	"result": template.Must(template.New("result").Parse(`Analyze the results of this paper and extract the following information:

Paper content:
{{.Content}}

Please return results in JSON format, including:
{
    "main_results": "Key experimental results",
    "performance_improvements": "Performance improvements compared to baselines",
    "key_findings": ["Key finding 1", "Key finding 2", ...],
    "limitations": "Known limitations of the method",
    "future_work": "Future work directions"
}

Summarize the results accurately.`)),
}

var sectionPromptTmpl = template.Must(template.New("section").Parse(`Analyze this section and extract key information:

Section type: {{.Kind}}
Content:
{{.Content}}

Please return results in JSON format, including:
{
    "key_points": ["Key point 1", "Key point 2", ...],
    "summary": "Brief summary",
    "keywords": ["Keyword 1", "Keyword 2", ...]
}`))

var keywordsPromptTmpl = template.Must(template.New("keywords").Parse(`Extract {{.NumKeywords}} core keywords from the following paper abstract and content.

Title: {{.Title}}
Abstract: {{.Abstract}}

Main content:
{{.Content}}

Please return results in JSON format:
{
    "keywords": ["keyword1", "keyword2", ...]
}

Keywords should cover:
1. Research field/domain
2. Core methods/techniques
3. Key contributions
4. Application areas`))

var summaryPromptTmpl = template.Must(template.New("summary").Parse(`Generate a comprehensive summary of this paper in {{.Language}}.

Paper title: {{.Title}}
Abstract: {{.Abstract}}

Main analysis results:
- Research background: {{.Background}}
- Core technology: {{.Technology}}
- Experimental design: {{.Experiment}}
- Main results: {{.Result}}

Please generate a {{.DetailLevel}} summary covering:
1. Research problem and motivation
2. Proposed method and innovations
3. Experimental validation and main results
4. Paper contributions and significance

Output the summary directly, no JSON format needed.`))

var quickSummaryPromptTmpl = template.Must(template.New("quick-summary").Parse(`Generate a brief summary of this paper (around 200 words):

Title: {{.Title}}
Abstract: {{.Abstract}}

Include: main problem, proposed method, and key results.`))

var keyResourcesPromptTmpl = template.Must(template.New("key-resources").Parse(`Based on the paper analysis, identify the most important figures, tables, and equations that should be included in the summary report.

Paper: {{.Title}}

Paper Summary:
{{.Summary}}...

Core Technology:
{{.Technology}}

Main Results:
{{.Results}}

{{.Resources}}

Please identify which resources are KEY/CRITICAL for understanding this paper. Select up to:
- 3 most important figures
- 3 most important tables
- 5 most important equations

Return results in JSON format:
{
    "key_figures": [1, 2],
    "key_tables": [1],
    "key_equations": [1, 3, 5],
    "reasoning": "Brief explanation of why these resources are key"
}

Indices are 1-based. If a category has no key resources, return an empty list [].`))

// render executes a prompt template against its data.
func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
