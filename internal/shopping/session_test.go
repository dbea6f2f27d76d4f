package shopping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func list(names ...string) []Item {
	items := make([]Item, len(names))
	for i, name := range names {
		items[i] = Item{ID: IDFor(name), Name: name, Needed: true}
	}
	return items
}

func TestSessionSetNeeded(t *testing.T) {
	s := NewSession()
	s.Recompute(list("eggs", "milk"))

	require.True(t, s.SetNeeded(IDFor("eggs"), false))
	assert.False(t, s.SetNeeded(IDFor("bread"), false), "unknown ids are ignored")
	assert.False(t, s.OptOuts().Has(IDFor("bread")))

	selected := s.Selected()
	require.Len(t, selected, 1)
	assert.Equal(t, "milk", selected[0].Name)

	require.True(t, s.SetNeeded(IDFor("eggs"), true))
	assert.Empty(t, s.OptOuts())
}

func TestSessionOverrideSurvivesUnrelatedChange(t *testing.T) {
	s := NewSession()
	s.Recompute(list("eggs", "milk"))
	s.SetNeeded(IDFor("eggs"), false)

	items := s.Recompute(list("eggs", "rice"))

	eggs, ok := find(items, "eggs")
	require.True(t, ok)
	assert.False(t, eggs.Needed)
}

func TestSessionOverridePurgedWhenItemDisappears(t *testing.T) {
	s := NewSession()
	s.Recompute(list("eggs", "milk"))
	s.SetNeeded(IDFor("eggs"), false)

	s.Recompute(list("milk"))
	assert.False(t, s.OptOuts().Has(IDFor("eggs")))

	items := s.Recompute(list("eggs", "milk"))
	eggs, ok := find(items, "eggs")
	require.True(t, ok)
	assert.True(t, eggs.Needed, "re-added item starts needed again")
}

func TestSessionOrderKey(t *testing.T) {
	s := NewSession()

	key := s.OrderKey()
	require.NotEmpty(t, key)
	assert.Equal(t, key, s.OrderKey(), "retries reuse the key")

	s.OrderCompleted()
	assert.NotEqual(t, key, s.OrderKey())
}
