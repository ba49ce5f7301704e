package model

import "strings"

func foldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DefaultsChain is an ordered list of fallback records, highest priority
// first. Both parsers consult it for fields missing in their own source.
// Lookups can be restricted to records from a given source, e.g. the NFO
// parser takes its title fallback only from a regex-parsed folder record.
type DefaultsChain []*SceneRecord

func matchSource(r *SceneRecord, sources []Source) bool {
	if len(sources) == 0 {
		return true
	}
	for _, s := range sources {
		if r.Source == s {
			return true
		}
	}
	return false
}

// Lookup returns the first non-empty string value for field, restricted to
// records whose Source is in sources (any source when empty).
func (c DefaultsChain) Lookup(field Field, sources ...Source) string {
	for _, r := range c {
		if r == nil || !matchSource(r, sources) {
			continue
		}
		var v string
		switch field {
		case FieldTitle:
			v = r.Title
		case FieldDetails:
			v = r.Details
		case FieldStudio:
			v = r.Studio
		case FieldMovie:
			v = r.Movie
		case FieldDirector:
			v = r.Director
		case FieldDate:
			v = r.Date
		case FieldURL:
			v = r.URL
		}
		if v != "" {
			return v
		}
	}
	return ""
}

// LookupRating returns the first non-zero rating.
func (c DefaultsChain) LookupRating(sources ...Source) int {
	for _, r := range c {
		if r == nil || !matchSource(r, sources) {
			continue
		}
		if r.Rating != 0 {
			return r.Rating
		}
	}
	return 0
}

// LookupIndex returns the first non-zero scene index.
func (c DefaultsChain) LookupIndex(sources ...Source) int {
	for _, r := range c {
		if r == nil || !matchSource(r, sources) {
			continue
		}
		if r.SceneIndex != 0 {
			return r.SceneIndex
		}
	}
	return 0
}

// LookupActors returns the first non-empty actor list.
func (c DefaultsChain) LookupActors(sources ...Source) []string {
	for _, r := range c {
		if r == nil || !matchSource(r, sources) {
			continue
		}
		if len(r.Actors) > 0 {
			return r.Actors
		}
	}
	return nil
}

// AllTags collects tags from every matching record in the chain. Tags are
// merged with defaults rather than replaced, so every level contributes.
func (c DefaultsChain) AllTags(sources ...Source) []string {
	var out []string
	for _, r := range c {
		if r == nil || !matchSource(r, sources) {
			continue
		}
		out = append(out, r.Tags...)
	}
	return out
}

// MergeTags unions tags with extra, dropping duplicates case-insensitively.
// The first spelling seen wins, input order is preserved.
func MergeTags(tags, extra []string) []string {
	seen := make(map[string]bool, len(tags)+len(extra))
	var out []string
	for _, lst := range [][]string{tags, extra} {
		for _, t := range lst {
			k := foldKey(t)
			if t == "" || seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, t)
		}
	}
	return out
}
