package enrich

import "github.com/arkankau/coffee-chatted/internal/prompttmpl"

const fitSystemPrompt = `You normalize recruiting profile text so a fit score can be computed.
Be conservative: when a match is not clear, answer "unknown" and keep confidence at or below 0.6.
Use only the facts given. Reply with one JSON object and nothing else.`

const fitSchema = `{
  "industry_match": 0 | 1 | "unknown",
  "role_match": 0 | 1 | "unknown",
  "seniority_bucket": "student" | "analyst" | "associate" | "manager_plus" | "unknown",
  "notes": {"normalized_industry": string, "normalized_role": string},
  "confidence": number between 0 and 1,
  "explanation": one sentence
}`

var fitPromptTmpl = prompttmpl.MustParse("fit_prompt", `Target profile:
- industry: {{.Req.TargetIndustry}}
- role: {{.Req.TargetRole}}

Contact profile:
- company: {{oneline .Req.Company}}
- role title: {{oneline .Req.RoleTitle}}
- industry as written: {{oneline .Req.IndustryText}}
- seniority hints: {{oneline .Req.SeniorityText}}

industry_match and role_match are 1 for a clear match, 0 for a clear mismatch, "unknown" otherwise.
Return exactly this schema:
{{.Schema}}`, nil)

func buildFitPrompt(req FitRequest) (string, error) {
	return prompttmpl.Render(fitPromptTmpl, map[string]any{"Req": req, "Schema": fitSchema})
}

const toneSystemPrompt = `You rewrite reminder text for a professional networking follow-up app.
Keep it calm and optional ("If you want", "Optional"), one or two sentences, no urgency.
Add no facts beyond the context and never mention automation.
Reply with one JSON object and nothing else: {"title": short heading of at most 10 words, "body": one or two sentences}.`

var tonePromptTmpl = prompttmpl.MustParse("tone_prompt", `Contact: {{.ContactName}}
Interaction type: {{.InteractionType}}
Days since last interaction: {{.DaysSince}}
Usual window: {{.Window.Min}}-{{.Window.Max}} days
Shared connection: {{orDefault "None" (print .SharedConnection)}}
Reasons: {{if .Reasons}}{{join .Reasons "; "}}{{else}}Follow-up suggested{{end}}
Raw message: {{printf "%q" .RawMessage}}
`, nil)

func buildTonePrompt(req PolishRequest) (string, error) {
	return prompttmpl.Render(tonePromptTmpl, req)
}
