package categorize

import (
	"context"
	"errors"
	"strings"

	"tandem/internal/names"
)

var ErrNoKeyword = errors.New("no keyword matched")

// keywordRules is the offline categorizer used when no LLM provider is
// configured. First match wins, so more specific words come first.
var keywordRules = []struct {
	words     []string
	placement Placement
}{
	{[]string{"frozen", "ice cream"}, Placement{"Frozen", "Freezer"}},
	{[]string{"milk", "cheese", "yogurt", "yoghurt", "butter", "cream", "parmesan", "eggs"}, Placement{"Dairy", "Fridge"}},
	{[]string{"chicken", "beef", "pork", "lamb", "bacon", "sausage", "mince"}, Placement{"Meat", "Fridge"}},
	{[]string{"salmon", "tuna", "shrimp", "prawn", "fish", "cod"}, Placement{"Seafood", "Fridge"}},
	{[]string{"apple", "banana", "lettuce", "spinach", "tomato", "onion", "garlic", "potato", "carrot", "lemon", "zucchini", "pepper"}, Placement{"Produce", "Fridge"}},
	{[]string{"bread", "bagel", "tortilla", "bun"}, Placement{"Bakery", "Pantry"}},
	{[]string{"rice", "pasta", "flour", "oat", "quinoa", "noodle"}, Placement{"Grains", "Pantry"}},
	{[]string{"canned", "tin", "beans", "chickpea"}, Placement{"Canned Goods", "Pantry"}},
	{[]string{"salt", "cumin", "paprika", "cinnamon", "oregano", "spice"}, Placement{"Spices", "Pantry"}},
	{[]string{"coffee", "tea", "juice", "water", "soda"}, Placement{"Beverages", "Pantry"}},
	{[]string{"chips", "crackers", "cookie", "chocolate", "nuts"}, Placement{"Snacks", "Pantry"}},
}

// Keywords categorizes by substring match on the normalized name.
type Keywords struct{}

func (Keywords) Categorize(ctx context.Context, itemName string) (Placement, error) {
	key := names.Key(itemName)
	for _, rule := range keywordRules {
		for _, word := range rule.words {
			if strings.Contains(key, word) {
				return rule.placement, nil
			}
		}
	}
	return Placement{}, ErrNoKeyword
}
