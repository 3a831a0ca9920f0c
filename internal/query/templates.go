package query

import "strings"

// Path is the processing path selected from query analysis, independent of
// routing. It only influences which response template is suggested.
type Path string

const (
	PathAdvanced      Path = "advanced"
	PathEntityFocused Path = "entity_focused"
	PathQuestion      Path = "question"
	PathStandard      Path = "standard"
)

const jsonReplyInstruction = `Please provide an answer in valid JSON format, without any code fences or extra formatting, on a single line:

{"answer": "<Your answer here>"}`

var pathTemplates = map[Path]string{
	PathAdvanced: `You are an assistant that provides detailed answers.

Question: {query}

Context:
{context}

` + jsonReplyInstruction,

	PathEntityFocused: `You are an assistant that focuses on entities.

Question: {query}

Entities Detected: {entities}

Context:
{context}

` + jsonReplyInstruction,

	PathQuestion: `You are an assistant that answers questions.

Question: {query}

Context:
{context}

` + jsonReplyInstruction,

	PathStandard: `You are an assistant.

{query}

Context:
{context}

` + jsonReplyInstruction,
}

const (
	complexitySection = "\nComplexity Analysis:\n{complexity_analysis}"
	entitySection     = "\nEntity Details:\n{entity_details}"
)

// TemplateFor looks up the per-path template and appends the optional
// complexity and entity sections. Both sections may apply at once.
func TemplateFor(path Path, analysis Analysis) string {
	tmpl, ok := pathTemplates[path]
	if !ok {
		tmpl = pathTemplates[PathStandard]
	}
	if analysis.Complexity > 0.7 {
		tmpl += complexitySection
	}
	if len(analysis.Entities) > 0 {
		tmpl += entitySection
	}
	return tmpl
}

// RenderTemplate substitutes {placeholder} variables. Unknown placeholders
// are left in place.
func RenderTemplate(tmpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
