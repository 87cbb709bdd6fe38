package model

import (
	"path"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// OwnerRef points at the entity a file belongs to.
// Kind is a free-form type name (e.g. "post", "user") and ID its identifier.
type OwnerRef struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// IsZero reports whether the reference is unset.
func (r OwnerRef) IsZero() bool {
	return r.Kind == "" || r.ID == ""
}

func (r OwnerRef) String() string {
	return r.Kind + ":" + r.ID
}

// File represents one stored blob and the metadata describing it.
// Owner, UUID, Disk, Filepath, Size and Mimetype are fixed once the file is ingested.
type File struct {
	ID          string         `json:"id"`
	Owner       OwnerRef       `json:"owner"`
	UUID        string         `json:"uuid"`
	DisplayName *string        `json:"display_name,omitempty"`
	Disk        string         `json:"disk"`
	Filepath    string         `json:"filepath"`
	Filename    string         `json:"filename"`
	Mimetype    string         `json:"mimetype"`
	Size        int64          `json:"size"`
	Meta        map[string]any `json:"meta,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Extension returns the filename extension without the leading dot.
func (f *File) Extension() string {
	return strings.TrimPrefix(path.Ext(f.Filename), ".")
}

// Basename returns the filename without its extension.
func (f *File) Basename() string {
	return strings.TrimSuffix(f.Filename, path.Ext(f.Filename))
}

// Name returns the display name, falling back to a slug of the basename.
func (f *File) Name() string {
	if f.DisplayName != nil {
		return *f.DisplayName
	}
	return Slug(f.Basename())
}

// IsOfMimeType matches the mimetype against a pattern where '*' matches any run of characters.
func (f *File) IsOfMimeType(pattern string) bool {
	if pattern == f.Mimetype {
		return true
	}
	expr := "^" + strings.ReplaceAll(regexp.QuoteMeta(pattern), `\*`, ".*") + "$"
	ok, err := regexp.MatchString(expr, f.Mimetype)
	return err == nil && ok
}

// Slug lowercases s, strips diacritics and joins the remaining ASCII words with dashes.
func Slug(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if b.Len() > 0 && !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
