package stac

// LinkHolder is implemented by every entity that owns a links array
// (Catalog, Collection, Item, ItemCollection). Go has no trait/interface
// default-method mechanism, so the Links-trait operations named in the
// specification are free functions taking a LinkHolder, mirroring how the
// Rust Links trait is implemented once and shared across entity types.
type LinkHolder interface {
	GetLinks() []Link
	SetLinks(links []Link)
	GetSelfHref() string
}

// LinkOf returns the first link with the given rel, if any.
func LinkOf(h LinkHolder, rel string) (Link, bool) {
	for _, l := range h.GetLinks() {
		if l.Rel == rel {
			return l, true
		}
	}
	return Link{}, false
}

// RootLink, SelfLinkOf, ParentLink are convenience wrappers around LinkOf.
func RootLink(h LinkHolder) (Link, bool)   { return LinkOf(h, RelRoot) }
func SelfLinkOf(h LinkHolder) (Link, bool) { return LinkOf(h, RelSelf) }
func ParentLink(h LinkHolder) (Link, bool) { return LinkOf(h, RelParent) }

// ChildLinks returns every link with rel "child".
func ChildLinks(h LinkHolder) []Link { return linksWithRel(h, RelChild) }

// ItemLinks returns every link with rel "item".
func ItemLinks(h LinkHolder) []Link { return linksWithRel(h, RelItem) }

func linksWithRel(h LinkHolder, rel string) []Link {
	var out []Link
	for _, l := range h.GetLinks() {
		if l.Rel == rel {
			out = append(out, l)
		}
	}
	return out
}

// SetLink replaces every existing link sharing l.Rel with l, leaving
// exactly one link with that rel.
func SetLink(h LinkHolder, l Link) {
	links := h.GetLinks()
	out := make([]Link, 0, len(links)+1)
	replaced := false
	for _, existing := range links {
		if existing.Rel == l.Rel {
			if !replaced {
				out = append(out, l)
				replaced = true
			}
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, l)
	}
	h.SetLinks(out)
}

// AddLink appends a link without deduplicating by rel.
func AddLink(h LinkHolder, l Link) {
	h.SetLinks(append(h.GetLinks(), l))
}

// RemoveRelativeLinks drops every link whose href is relative.
func RemoveRelativeLinks(h LinkHolder) {
	links := h.GetLinks()
	out := make([]Link, 0, len(links))
	for _, l := range links {
		if l.IsAbsolute() {
			out = append(out, l)
		}
	}
	h.SetLinks(out)
}

// RemoveStructuralLinks drops every link whose rel is structural.
func RemoveStructuralLinks(h LinkHolder) {
	links := h.GetLinks()
	out := make([]Link, 0, len(links))
	for _, l := range links {
		if !l.IsStructural() {
			out = append(out, l)
		}
	}
	h.SetLinks(out)
}

// MakeLinksAbsolute rewrites every relative link against self_href, failing
// with ErrNoHref if none is set.
func MakeLinksAbsolute(h LinkHolder) error {
	self := h.GetSelfHref()
	if self == "" {
		return ErrNoHref
	}
	links := h.GetLinks()
	out := make([]Link, len(links))
	for i, l := range links {
		out[i] = l.MakeAbsolute(self)
	}
	h.SetLinks(out)
	return nil
}

// MakeLinksRelative rewrites every absolute link relative to self_href,
// failing with ErrNoHref if none is set.
func MakeLinksRelative(h LinkHolder) error {
	self := h.GetSelfHref()
	if self == "" {
		return ErrNoHref
	}
	links := h.GetLinks()
	out := make([]Link, len(links))
	for i, l := range links {
		out[i] = l.MakeRelative(self)
	}
	h.SetLinks(out)
	return nil
}
