package linklist

import "strings"

// ResolveFragments returns a copy of categories in which every link URL
// starting with "#" is rewritten as base + "/" + fragment. The input is not
// modified. An empty base returns an unmodified copy.
func ResolveFragments(categories []Category, base string) []Category {
	base = strings.TrimRight(base, "/")
	out := make([]Category, len(categories))
	for i, c := range categories {
		cc := newCategory(c.Title)
		cc.Subcategories = make([]Subcategory, len(c.Subcategories))
		for j, sub := range c.Subcategories {
			links := make([]Link, len(sub.Links))
			for k, l := range sub.Links {
				if base != "" && strings.HasPrefix(l.URL, "#") {
					l.URL = base + "/" + l.URL
				}
				links[k] = l
			}
			cc.Subcategories[j] = newSubcategory(sub.Title, links...)
		}
		out[i] = cc
	}
	return out
}
