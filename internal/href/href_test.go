package href

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPath(t *testing.T) {
	h := New("data/item.json")
	p, ok := h.AsPath()
	require.True(t, ok)
	assert.Equal(t, "data/item.json", p)
}

func TestNewBackslashesNormalized(t *testing.T) {
	h := New(`data\item.json`)
	p, ok := h.AsPath()
	require.True(t, ok)
	assert.Equal(t, "data/item.json", p)
}

func TestNewURL(t *testing.T) {
	h := New("http://example.com/item.json")
	_, ok := h.AsURL()
	require.True(t, ok)
	assert.True(t, h.IsURL())
	assert.True(t, h.IsAbsolute())
}

func TestNewDataURLDemotedToPath(t *testing.T) {
	h := New("data:text/plain,hello")
	assert.True(t, h.IsPath())
}

func TestJoinPath(t *testing.T) {
	base := New("a/b/catalog.json")
	joined := base.Join(New("item.json"))
	p, _ := joined.AsPath()
	assert.Equal(t, "a/b/item.json", p)
}

func TestJoinPathWithTrailingSlash(t *testing.T) {
	base := New("a/b/")
	joined := base.Join(New("item.json"))
	p, _ := joined.AsPath()
	assert.Equal(t, "a/b/item.json", p)
}

func TestJoinAbsoluteRefUnchanged(t *testing.T) {
	base := New("a/b/catalog.json")
	ref := New("/x/y.json")
	joined := base.Join(ref)
	p, _ := joined.AsPath()
	assert.Equal(t, "/x/y.json", p)
}

func TestJoinURL(t *testing.T) {
	base := New("http://example.com/a/catalog.json")
	joined := base.Join(New("item.json"))
	u, ok := joined.AsURL()
	require.True(t, ok)
	assert.Equal(t, "http://example.com/a/item.json", u.String())
}

func TestJoinAbsoluteURLRef(t *testing.T) {
	base := New("http://example.com/a/catalog.json")
	ref := New("http://other.com/x.json")
	joined := base.Join(ref)
	u, _ := joined.AsURL()
	assert.Equal(t, "http://other.com/x.json", u.String())
}

func TestJoinNormalizesDotDot(t *testing.T) {
	base := New("a/b/c/catalog.json")
	joined := base.Join(New("../item.json"))
	p, _ := joined.AsPath()
	assert.Equal(t, "a/b/item.json", p)
}

func TestMakeRelativeCommonBase(t *testing.T) {
	base := New("a/b/catalog.json")
	target := New("a/b/c/item.json")
	rel := target.MakeRelative(base)
	p, _ := rel.AsPath()
	assert.Equal(t, "c/item.json", p)
}

func TestMakeRelativeNoCommonBase(t *testing.T) {
	base := New("/a/b/catalog.json")
	target := New("a/b/item.json")
	rel := target.MakeRelative(base)
	// path-ness mismatch (one absolute, one relative) -> returned unchanged
	p, _ := rel.AsPath()
	assert.Equal(t, "a/b/item.json", p)
}

func TestMakeRelativeTwoAbsoluteNoCommonRoot(t *testing.T) {
	base := New("/data/catalog.json")
	target := New("/other/extensions-collection/collection.json")
	rel := target.MakeRelative(base)
	// both absolute, no common root segment -> target returned unchanged
	p, _ := rel.AsPath()
	assert.Equal(t, "/other/extensions-collection/collection.json", p)
}

func TestMakeRelativeSameDirectory(t *testing.T) {
	base := New("a/b/catalog.json")
	target := New("a/b/item.json")
	rel := target.MakeRelative(base)
	p, _ := rel.AsPath()
	assert.Equal(t, "./item.json", p)
}

func TestMakeRelativeURL(t *testing.T) {
	base := New("http://example.com/a/b/catalog.json")
	target := New("http://example.com/a/b/c/item.json")
	rel := target.MakeRelative(base)
	p, _ := rel.AsPath()
	assert.Equal(t, "c/item.json", p)
}

func TestMakeRelativeCrossOriginURLUnchanged(t *testing.T) {
	base := New("http://example.com/a/catalog.json")
	target := New("http://other.com/a/item.json")
	rel := target.MakeRelative(base)
	u, ok := rel.AsURL()
	require.True(t, ok)
	assert.Equal(t, "http://other.com/a/item.json", u.String())
}

func TestRebase(t *testing.T) {
	oldRoot := New("a/b/catalog.json")
	newRoot := New("x/y/catalog.json")
	target := New("a/b/c/item.json")
	rebased := target.Rebase(oldRoot, newRoot)
	p, _ := rebased.AsPath()
	assert.Equal(t, "x/y/c/item.json", p)
}

func TestFileNameAndDirectory(t *testing.T) {
	h := New("a/b/item.json")
	assert.Equal(t, "item.json", h.FileName())
	assert.Equal(t, "a/b", h.Directory())
}

func TestJoinRoundTrip(t *testing.T) {
	base := New("a/b/catalog.json")
	ref := New("c/item.json")
	joined := base.Join(ref)
	rel := joined.MakeRelative(base)
	p, _ := rel.AsPath()
	assert.Equal(t, "c/item.json", p)
}
