package parser

import (
	"slices"
	"strings"
)

// Filter selects which options are kept for output. Zero-valued fields
// do not filter.
type Filter struct {
	Prefix         string // Keep names starting with this prefix
	Search         string // Case-insensitive match on name or description
	Type           string // Case-insensitive match on the type display string
	HasDefault     bool   // Keep only options with a default
	HasDescription bool   // Keep only options with a description
}

// IsZero reports whether the filter keeps everything.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Matches reports whether a single option passes the filter.
func (f Filter) Matches(o Option) bool {
	if f.Prefix != "" && !strings.HasPrefix(o.Name, f.Prefix) {
		return false
	}
	if f.Type != "" && !containsFold(o.Type.String(), f.Type) {
		return false
	}
	if f.Search != "" && !containsFold(o.Name, f.Search) && !containsFold(o.Description, f.Search) {
		return false
	}
	if f.HasDefault && !o.HasDefault() {
		return false
	}
	if f.HasDescription && !o.HasDescription() {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// FilterOptions applies filtering rules and returns a new slice.
func FilterOptions(options []Option, f Filter) []Option {
	filtered := make([]Option, 0, len(options))
	for _, o := range options {
		if f.Matches(o) {
			filtered = append(filtered, o)
		}
	}
	return filtered
}

// SortOptions returns a copy of options ordered by name.
func SortOptions(options []Option) []Option {
	sorted := slices.Clone(options)
	slices.SortStableFunc(sorted, func(a, b Option) int {
		return strings.Compare(a.Name, b.Name)
	})
	return sorted
}

// StripPrefix removes a leading "prefix." from every option name. Names
// equal to the prefix, or not under it, are left alone.
func StripPrefix(options []Option, prefix string) []Option {
	prefix = strings.TrimSuffix(prefix, ".")
	if prefix == "" {
		return options
	}
	out := make([]Option, len(options))
	for i, o := range options {
		if rest, ok := strings.CutPrefix(o.Name, prefix+"."); ok && rest != "" {
			o.Name = rest
		}
		out[i] = o
	}
	return out
}

// RewritePaths prefixes every source file with base, e.g. a repository
// blob URL, so rendered links resolve outside the checkout.
func RewritePaths(options []Option, base string) []Option {
	if base == "" {
		return options
	}
	base = strings.TrimSuffix(base, "/")
	out := make([]Option, len(options))
	for i, o := range options {
		o.File = base + "/" + strings.TrimPrefix(o.File, "/")
		out[i] = o
	}
	return out
}
