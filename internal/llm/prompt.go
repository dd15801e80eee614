package llm

import (
	"encoding/json"
	"strings"
)

const clauseExtractionSystem = `You are a legal contract analysis assistant. ` +
	`Your job is to extract and structure the significant clauses from contract text.

Rules:
- Only use information present in the provided text. Do not infer or add anything.
- Return valid JSON only. No explanation, no markdown, just JSON.
- If a field is not present in the text, use null for optional fields.
- For clause_type, choose the closest match from the allowed values.`

// buildClauseUserPrompt embeds the (possibly truncated) contract text and the
// output schema into the user instruction.
func buildClauseUserPrompt(contractText string, schema map[string]any) string {
	var b strings.Builder
	b.WriteString("Extract all significant clauses from the contract text below.\n\n")
	b.WriteString("For each clause, return:\n")
	b.WriteString("- clause_type: the closest match from the enum in the schema\n")
	b.WriteString("- title: short descriptive title\n")
	b.WriteString("- content: the exact relevant text from the document\n")
	b.WriteString("- summary: one plain-English sentence describing what this clause means\n")
	b.WriteString(`- section_reference: section number (e.g. "Section 4.2") if visible in the text, otherwise null` + "\n\n")
	b.WriteString("Return ONLY JSON that matches this JSON Schema:\n")
	b.WriteString(mustJSON(schema))
	b.WriteString("\n\nContract text:\n")
	b.WriteString(contractText)
	return b.String()
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
