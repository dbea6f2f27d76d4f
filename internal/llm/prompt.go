package llm

import "strings"

// BuildCategorizePrompt asks for the category and storage location of one
// grocery item, restricted to the given choices.
func BuildCategorizePrompt(itemName string, categories, locations []string) string {
	return `
You are a kitchen inventory assistant.

Your task:
- Decide the grocery category and the storage location of ONE item.
- Output MUST be valid JSON.
- Output MUST start with { and end with }.
- Output MUST contain ONLY JSON.
- NO explanations.
- NO markdown.

Allowed categories: ` + strings.Join(categories, ", ") + `
Allowed locations: ` + strings.Join(locations, ", ") + `

Required JSON schema:
{
  "category": "string",
  "location": "string"
}

ITEM:
` + itemName
}
