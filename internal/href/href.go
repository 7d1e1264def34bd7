// Package href implements the normalized URL-or-path value used to locate
// STAC objects and to resolve links between them.
package href

import (
	"net/url"
	"path"
	"strings"
)

// Href is a normalized location: either an absolute URL or a forward-slash
// delimited path. Path values never contain backslashes; constructors
// convert platform-native separators on the way in.
type Href struct {
	url  *url.URL
	path string
	isURL bool
}

// New parses s as a URL if possible and the result can serve as a base for
// further resolution; otherwise it is treated as a path. New never fails:
// syntactically odd input simply becomes a Path.
func New(s string) Href {
	if u, err := url.Parse(s); err == nil && u.IsAbs() && canBeBase(u) {
		return Href{url: u, isURL: true}
	}
	return Href{path: toSlash(s)}
}

// FromURL wraps an already-parsed URL.
func FromURL(u *url.URL) Href {
	if u != nil && u.IsAbs() && canBeBase(u) {
		return Href{url: u, isURL: true}
	}
	return Href{path: toSlash(u.String())}
}

// canBeBase reports whether a URL can serve as a base for relative
// resolution. Opaque schemes such as "data:" cannot, and are demoted to a
// Path per the Href invariant.
func canBeBase(u *url.URL) bool {
	return u.Opaque == ""
}

func toSlash(s string) string {
	return strings.ReplaceAll(s, "\\", "/")
}

// IsURL reports whether this Href is the Url variant.
func (h Href) IsURL() bool { return h.isURL }

// IsPath reports whether this Href is the Path variant.
func (h Href) IsPath() bool { return !h.isURL }

// AsURL returns the underlying URL and true if this is a Url variant.
func (h Href) AsURL() (*url.URL, bool) {
	if !h.isURL {
		return nil, false
	}
	u := *h.url
	return &u, true
}

// AsPath returns the underlying path string and true if this is a Path
// variant.
func (h Href) AsPath() (string, bool) {
	if h.isURL {
		return "", false
	}
	return h.path, true
}

// String renders the Href in canonical form.
func (h Href) String() string {
	if h.isURL {
		return h.url.String()
	}
	return h.path
}

// IsAbsolute reports whether the Href is absolute: the Url variant, or a
// Path variant starting with "/".
func (h Href) IsAbsolute() bool {
	if h.isURL {
		return true
	}
	return strings.HasPrefix(h.path, "/")
}

// IsRelative is the negation of IsAbsolute.
func (h Href) IsRelative() bool { return !h.IsAbsolute() }

// Join resolves ref against h acting as a base. If ref is absolute it is
// returned unchanged. Otherwise: a Url base uses standard URL resolution; a
// Path base drops its last segment unless it ends in "/", then joins and
// normalizes "." and "..".
func (h Href) Join(ref Href) Href {
	if ref.IsAbsolute() {
		return ref
	}
	refStr := ref.String()
	if h.isURL {
		joined, err := h.url.Parse(refStr)
		if err != nil {
			return Href{path: normalizePath(joinPaths(h.url.Path, refStr))}
		}
		return Href{url: joined, isURL: true}
	}
	return Href{path: normalizePath(joinPaths(h.path, refStr))}
}

func joinPaths(base, ref string) string {
	dir := base
	if !strings.HasSuffix(dir, "/") {
		dir = path.Dir(dir)
		if dir == "." {
			dir = ""
		}
	} else {
		dir = strings.TrimSuffix(dir, "/")
	}
	if dir == "" {
		return ref
	}
	return dir + "/" + ref
}

// normalizePath collapses "." and ".." segments without consulting the
// filesystem, preserving a leading "/" and a trailing "/" when present.
func normalizePath(p string) string {
	if p == "" {
		return p
	}
	leadingSlash := strings.HasPrefix(p, "/")
	trailingSlash := strings.HasSuffix(p, "/") && p != "/"
	segments := strings.Split(p, "/")
	var out []string
	for _, seg := range segments {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(out) > 0 && out[len(out)-1] != ".." {
				out = out[:len(out)-1]
			} else if !leadingSlash {
				out = append(out, "..")
			}
		default:
			out = append(out, seg)
		}
	}
	result := strings.Join(out, "/")
	if leadingSlash {
		result = "/" + result
	}
	if trailingSlash && result != "" && !strings.HasSuffix(result, "/") {
		result += "/"
	}
	if result == "" {
		if leadingSlash {
			return "/"
		}
		return "."
	}
	return result
}

// MakeRelative produces the shortest relative Href from base to h by
// walking shared leading slash-delimited segments, emitting ".." per
// unmatched base segment followed by the remaining target segments. If the
// walk yields nothing (h and base name the same directory), the result is
// "./<filename>". Cross-origin URLs, and absolute paths with no common root
// (base's first directory segment differs from h's), are returned
// unchanged (as h).
func (h Href) MakeRelative(base Href) Href {
	if h.isURL != base.isURL {
		return h
	}
	if h.isURL {
		if h.url.Scheme != base.url.Scheme || h.url.Host != base.url.Host {
			return h
		}
		rel := makeRelativePath(base.url.Path, h.url.Path)
		out := rel
		if h.url.RawQuery != "" {
			out += "?" + h.url.RawQuery
		}
		if h.url.Fragment != "" {
			out += "#" + h.url.Fragment
		}
		return Href{path: out}
	}
	hAbsolute := strings.HasPrefix(h.path, "/")
	baseAbsolute := strings.HasPrefix(base.path, "/")
	if hAbsolute != baseAbsolute {
		return h
	}
	if hAbsolute && baseAbsolute {
		baseSegs := splitSegments(baseDir(base.path))
		targetDir, _ := splitLast(h.path)
		targetSegs := splitSegments(targetDir)
		if len(baseSegs) > 0 && (len(targetSegs) == 0 || baseSegs[0] != targetSegs[0]) {
			return h
		}
	}
	return Href{path: makeRelativePath(base.path, h.path)}
}

func makeRelativePath(basePath, targetPath string) string {
	baseSegs := splitSegments(baseDir(basePath))
	targetDir, targetFile := splitLast(targetPath)
	targetSegs := splitSegments(targetDir)

	i := 0
	for i < len(baseSegs) && i < len(targetSegs) && baseSegs[i] == targetSegs[i] {
		i++
	}

	var parts []string
	for j := i; j < len(baseSegs); j++ {
		parts = append(parts, "..")
	}
	parts = append(parts, targetSegs[i:]...)

	if len(parts) == 0 {
		if targetFile == "" {
			return "."
		}
		return "./" + targetFile
	}
	result := strings.Join(parts, "/")
	if targetFile != "" {
		result += "/" + targetFile
	}
	return result
}

// baseDir returns the directory portion of a base href: if it ends in "/"
// the whole thing is the directory, else the last segment is dropped.
func baseDir(p string) string {
	if strings.HasSuffix(p, "/") {
		return strings.TrimSuffix(p, "/")
	}
	dir, _ := splitLast(p)
	return dir
}

func splitLast(p string) (dir, file string) {
	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return "", p
	}
	return p[:idx], p[idx+1:]
}

func splitSegments(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// Rebase relativizes h against oldRoot, then joins the result onto newRoot.
func (h Href) Rebase(oldRoot, newRoot Href) Href {
	rel := h.MakeRelative(oldRoot)
	return newRoot.Join(rel)
}

// FileName returns the last slash-delimited segment.
func (h Href) FileName() string {
	_, name := splitLast(h.String())
	return name
}

// Directory returns everything before the last slash-delimited segment.
func (h Href) Directory() string {
	dir, _ := splitLast(h.String())
	return dir
}
