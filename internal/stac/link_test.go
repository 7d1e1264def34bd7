package stac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLinkReplacesSameRel(t *testing.T) {
	c := NewCatalog("an-id", "a description")
	SetLink(c, Root("http://example.com/"))
	SetLink(c, Root("http://example.com/v2/"))
	root, ok := RootLink(c)
	require.True(t, ok)
	assert.Equal(t, "http://example.com/v2/", root.Href)

	count := 0
	for _, l := range c.Links {
		if l.Rel == RelRoot {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestLinkIsAbsolute(t *testing.T) {
	assert.True(t, New("http://example.com/a", RelSelf).IsAbsolute())
	assert.True(t, New("/a/b", RelSelf).IsAbsolute())
	assert.False(t, New("a/b", RelSelf).IsAbsolute())
}

func TestLinkIsStructural(t *testing.T) {
	assert.True(t, New("x", RelNext).IsStructural())
	assert.True(t, New("x", RelSearch).IsStructural())
	assert.False(t, New("x", "license").IsStructural())
}

func TestMakeLinksAbsoluteRequiresSelfHref(t *testing.T) {
	c := NewCatalog("an-id", "a description")
	AddLink(c, New("items", RelItems))
	err := MakeLinksAbsolute(c)
	assert.ErrorIs(t, err, ErrNoHref)
}

func TestMakeLinksAbsolute(t *testing.T) {
	c := NewCatalog("an-id", "a description")
	c.SetSelfHref("http://example.com/collections/a/")
	AddLink(c, New("items", RelItems))
	require.NoError(t, MakeLinksAbsolute(c))
	l, _ := LinkOf(c, RelItems)
	assert.Equal(t, "http://example.com/collections/a/items", l.Href)
}

func TestLinkBodyRejectsNonObject(t *testing.T) {
	_, err := New("x", RelSearch).WithBody([]int{1, 2, 3})
	assert.Error(t, err)
}

func TestLinkAdditionalFieldsRoundTrip(t *testing.T) {
	l := New("x", RelNext)
	l.AdditionalFields = map[string]any{"token": "abc"}
	raw, err := l.MarshalJSON()
	require.NoError(t, err)

	var decoded Link
	require.NoError(t, decoded.UnmarshalJSON(raw))
	assert.Equal(t, "abc", decoded.AdditionalFields["token"])
}
