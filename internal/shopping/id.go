package shopping

import (
	"github.com/google/uuid"

	"tandem/internal/names"
)

// ItemID identifies a shopping list item across recomputations.
type ItemID string

// itemNamespace scopes the name-derived UUIDs. Changing it changes every id.
var itemNamespace = uuid.MustParse("3f0c6a52-8f4e-5d8a-9a51-2b7f4f3c9e10")

// IDFor derives the item id from the normalized name, so names that are
// equal case-insensitively (or differ only by a noise prefix) share an id.
func IDFor(name string) ItemID {
	return idForKey(names.Key(name))
}

// idForKey hashes a key that is already normalized. Normalizing it again
// would strip a second noise prefix and merge distinct keys.
func idForKey(key string) ItemID {
	return ItemID(uuid.NewSHA1(itemNamespace, []byte(key)).String())
}
