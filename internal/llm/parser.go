package llm

import (
	"context"
	"strings"
)

// PlacementAnswer is the JSON a model returns for a categorize prompt.
type PlacementAnswer struct {
	Category string `json:"category"`
	Location string `json:"location"`
}

// AskPlacement runs a categorize prompt through client and decodes the answer.
// Values are trimmed but not validated against the allowed lists.
func AskPlacement(
	ctx context.Context,
	client Client,
	itemName string,
	categories, locations []string,
) (PlacementAnswer, error) {

	raw, err := client.Generate(ctx, BuildCategorizePrompt(itemName, categories, locations))
	if err != nil {
		return PlacementAnswer{}, err
	}

	var answer PlacementAnswer
	if err := DecodeJSON(raw, &answer); err != nil {
		return PlacementAnswer{}, err
	}

	answer.Category = strings.TrimSpace(answer.Category)
	answer.Location = strings.TrimSpace(answer.Location)
	return answer, nil
}
