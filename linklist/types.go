// CLAUDE:SUMMARY Defines Category, Subcategory, Link and Stats for parsed links-list documents.
package linklist

// Link is a titled URL found in the document.
type Link struct {
	Title       string `json:"title" yaml:"title"`
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Subcategory groups links under a bullet label.
type Subcategory struct {
	Title string `json:"title" yaml:"title"`
	Links []Link `json:"links" yaml:"links"`
}

// Category is a level-2 heading and everything below it up to the next one.
type Category struct {
	Title         string        `json:"title" yaml:"title"`
	Subcategories []Subcategory `json:"subcategories" yaml:"subcategories"`
}

// Stats counts the entities of a parsed document.
type Stats struct {
	Categories    int `json:"categories"`
	Subcategories int `json:"subcategories"`
	Links         int `json:"links"`
}

// Count walks categories and returns entity totals.
func Count(categories []Category) Stats {
	var s Stats
	s.Categories = len(categories)
	for _, c := range categories {
		s.Subcategories += len(c.Subcategories)
		for _, sub := range c.Subcategories {
			s.Links += len(sub.Links)
		}
	}
	return s
}

func newCategory(title string) Category {
	return Category{Title: title, Subcategories: []Subcategory{}}
}

func newSubcategory(title string, links ...Link) Subcategory {
	if links == nil {
		links = []Link{}
	}
	return Subcategory{Title: title, Links: links}
}
