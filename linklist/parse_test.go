package linklist

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"
)

func quietParser(cfg Config) *Parser {
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg)
}

func TestParse_Deterministic(t *testing.T) {
	// WHAT: Parsing the same text twice yields identical output.
	// WHY: No hidden ordering nondeterminism (maps, goroutines) may leak in.
	doc := strings.Join([]string{
		"# Awesome",
		"## Contents",
		"- [Platforms](#platforms)",
		"## Platforms",
		"- Runtimes",
		"  - [Node.js](https://nodejs.org)",
		"  - [Deno](https://deno.land)",
		"## Languages",
		"- [Go](https://go.dev)",
	}, "\n")
	p := quietParser(Config{})
	a := p.Parse(doc)
	b := p.Parse(doc)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("outputs differ:\n%#v\n%#v", a, b)
	}
}

func TestParse_HeadingToCategory(t *testing.T) {
	// WHAT: A heading followed by a plain bullet gives one category with one empty subcategory.
	// WHY: Basic heading/label mapping.
	got := quietParser(Config{}).Parse("## Foo\n- bar")
	want := []Category{{
		Title:         "Foo",
		Subcategories: []Subcategory{{Title: "bar", Links: []Link{}}},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParse_LinkAttachesToSubcategory(t *testing.T) {
	// WHAT: An indented bulleted link attaches to the preceding label.
	// WHY: Indentation is ignored; nesting comes from the current subcategory.
	got := quietParser(Config{}).Parse("## Foo\n- Bar\n  - [Baz](https://example.com)")
	if len(got) != 1 || len(got[0].Subcategories) != 1 {
		t.Fatalf("unexpected shape: %#v", got)
	}
	sub := got[0].Subcategories[0]
	if sub.Title != "Bar" {
		t.Errorf("subcategory title: got %q, want Bar", sub.Title)
	}
	want := []Link{{Title: "Baz", URL: "https://example.com"}}
	if !reflect.DeepEqual(sub.Links, want) {
		t.Errorf("links: got %#v, want %#v", sub.Links, want)
	}
}

func TestParse_UncategorizedFallback(t *testing.T) {
	// WHAT: A link before any heading lands in a synthetic "Uncategorized" category.
	// WHY: Content before the first heading must not be lost.
	got := quietParser(Config{}).Parse("- [Solo](https://example.com)")
	want := []Category{{
		Title: "Uncategorized",
		Subcategories: []Subcategory{{
			Title: "Solo",
			Links: []Link{{Title: "Solo", URL: "https://example.com"}},
		}},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParse_FallbackTitleConfigurable(t *testing.T) {
	got := quietParser(Config{Fallback: "Misc"}).Parse("- label")
	if len(got) != 1 || got[0].Title != "Misc" {
		t.Fatalf("got %#v", got)
	}
}

func TestParse_LabelBeforeHeading(t *testing.T) {
	// WHAT: A plain label before any heading also opens the fallback category.
	// WHY: The fallback is centralised; it is not specific to links.
	got := quietParser(Config{}).Parse("- Loose\n## Real\n- Inside")
	if len(got) != 2 {
		t.Fatalf("categories: got %d, want 2", len(got))
	}
	if got[0].Title != "Uncategorized" || got[0].Subcategories[0].Title != "Loose" {
		t.Errorf("first category: %#v", got[0])
	}
	if got[1].Title != "Real" || got[1].Subcategories[0].Title != "Inside" {
		t.Errorf("second category: %#v", got[1])
	}
}

func TestParse_InvalidInlineURLDropped(t *testing.T) {
	// WHAT: An inline link with a non-http scheme is discarded.
	// WHY: Inline links are validated; bad ones never fail the parse.
	got := quietParser(Config{}).Parse("## Foo\n- Bar\nsome text [Baz](ftp://bad)")
	if n := len(got[0].Subcategories[0].Links); n != 0 {
		t.Fatalf("links: got %d, want 0 (%#v)", n, got[0].Subcategories[0].Links)
	}
}

func TestParse_InlineValidURLKept(t *testing.T) {
	got := quietParser(Config{}).Parse("## Foo\n- Bar\nsee [Baz](https://baz.dev) for more")
	want := []Link{{Title: "Baz", URL: "https://baz.dev"}}
	if !reflect.DeepEqual(got[0].Subcategories[0].Links, want) {
		t.Fatalf("links: got %#v", got[0].Subcategories[0].Links)
	}
}

func TestParse_ParenthesizedURLs(t *testing.T) {
	// WHAT: URLs holding one level of balanced parentheses are kept whole.
	// WHY: Wikipedia-style URLs must not be truncated or demoted to labels.
	const wiki = "https://en.wikipedia.org/wiki/Go_(language)"
	got := quietParser(Config{}).Parse(
		"## Foo\n- [Wiki](" + wiki + ")\n- [Next](https://example.com)\nsee [Again](" + wiki + ") here")
	want := []Category{{
		Title: "Foo",
		Subcategories: []Subcategory{{
			Title: "Wiki",
			Links: []Link{
				{Title: "Wiki", URL: wiki},
				{Title: "Next", URL: "https://example.com"},
				{Title: "Again", URL: wiki},
			},
		}},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParse_FragmentLinkAccepted(t *testing.T) {
	// WHAT: A "#fragment" inline link under an active subcategory is kept.
	// WHY: In-document anchors are valid targets even without a scheme.
	got := quietParser(Config{}).Parse("## Foo\n- Bar\nJump to [Section](#intro)")
	want := []Link{{Title: "Section", URL: "#intro"}}
	if !reflect.DeepEqual(got[0].Subcategories[0].Links, want) {
		t.Fatalf("links: got %#v", got[0].Subcategories[0].Links)
	}
}

func TestParse_ContentsHeadingSuppressed(t *testing.T) {
	// WHAT: "## Contents" never becomes a category, whatever its case or spacing.
	// WHY: It is a navigation artifact of the document, not content.
	for _, heading := range []string{"## Contents", "## contents", "##   CONTENTS  ", "##Contents"} {
		got := quietParser(Config{}).Parse(heading + "\n## Real")
		if len(got) != 1 || got[0].Title != "Real" {
			t.Errorf("%q: got %#v", heading, got)
		}
	}
}

func TestParse_ContentsBulletsGoToPreviousContext(t *testing.T) {
	// WHAT: Bullets after a skipped "## Contents" keep using the existing state.
	// WHY: The contents marker changes no state, it is not a reset.
	got := quietParser(Config{}).Parse("## Intro\n- About\n## Contents\n- [Platforms](#platforms)")
	if len(got) != 1 {
		t.Fatalf("categories: got %d, want 1", len(got))
	}
	links := got[0].Subcategories[0].Links
	if len(links) != 1 || links[0].URL != "#platforms" {
		t.Fatalf("links: got %#v", links)
	}
}

func TestParse_EmptyCategoryRetained(t *testing.T) {
	// WHAT: A heading with nothing under it still yields a category.
	// WHY: Empty sequences are valid output, not omitted.
	got := quietParser(Config{}).Parse("## Empty\n## Next\n- item")
	if len(got) != 2 {
		t.Fatalf("categories: got %d, want 2", len(got))
	}
	if got[0].Title != "Empty" || got[0].Subcategories == nil || len(got[0].Subcategories) != 0 {
		t.Fatalf("empty category: %#v", got[0])
	}
}

func TestParse_EmptySequencesEncodeAsArrays(t *testing.T) {
	// WHAT: Empty subcategory/link lists serialize as [] rather than null.
	// WHY: Consumers index into these arrays without null checks.
	got := quietParser(Config{}).Parse("## A\n- b")
	data, err := json.Marshal(got)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"links":[]`)) {
		t.Errorf("links not encoded as array: %s", data)
	}
	none, err := json.Marshal(quietParser(Config{}).Parse(""))
	if err != nil {
		t.Fatal(err)
	}
	if string(none) != "[]" {
		t.Errorf("empty document: got %s, want []", none)
	}
}

func TestParse_SkipsMarkupAndBlankLines(t *testing.T) {
	doc := "<p align=\"center\">\n\n<img src=\"x.svg\">\n## Foo\n   \n- Bar\n<a href=\"https://x.dev\">[X](https://x.dev)</a>"
	got := quietParser(Config{}).Parse(doc)
	if len(got) != 1 || len(got[0].Subcategories) != 1 {
		t.Fatalf("unexpected shape: %#v", got)
	}
	if n := len(got[0].Subcategories[0].Links); n != 0 {
		t.Errorf("markup line leaked %d links", n)
	}
}

func TestParse_BulletLinksShareSubcategory(t *testing.T) {
	// WHAT: The first bulleted link opens a subcategory; later ones join it.
	// WHY: A bulleted link becomes the current subcategory until a label or heading.
	got := quietParser(Config{}).Parse("## Tools\n- [A](https://a.dev)\n- [B](https://b.dev)\n- Next\n- [C](https://c.dev)")
	subs := got[0].Subcategories
	if len(subs) != 2 {
		t.Fatalf("subcategories: got %d, want 2 (%#v)", len(subs), subs)
	}
	if subs[0].Title != "A" || len(subs[0].Links) != 2 || subs[0].Links[1].Title != "B" {
		t.Errorf("first: %#v", subs[0])
	}
	if subs[1].Title != "Next" || len(subs[1].Links) != 1 || subs[1].Links[0].Title != "C" {
		t.Errorf("second: %#v", subs[1])
	}
}

func TestParse_BulletLinkNotValidated(t *testing.T) {
	// WHAT: Bulleted links keep URLs that inline links would reject.
	// WHY: Compatibility with the legacy asymmetric validation.
	got := quietParser(Config{}).Parse("## Foo\n- [Mirror](ftp://mirror.example)")
	links := got[0].Subcategories[0].Links
	if len(links) != 1 || links[0].URL != "ftp://mirror.example" {
		t.Fatalf("links: got %#v", links)
	}
}

func TestParse_HeadingResetsSubcategory(t *testing.T) {
	got := quietParser(Config{}).Parse("## A\n- Sub\n## B\n- [L](https://l.dev)")
	if len(got[0].Subcategories[0].Links) != 0 {
		t.Errorf("link leaked into previous category: %#v", got[0])
	}
	if got[1].Subcategories[0].Title != "L" {
		t.Errorf("second category: %#v", got[1])
	}
}

func TestParse_InlineLinkWithoutContextDropped(t *testing.T) {
	// WHAT: An inline link with no category or subcategory is dropped.
	// WHY: Inline links never trigger the fallback category.
	got := quietParser(Config{}).Parse("Intro [Home](https://home.dev)\n## Foo\nText [X](https://x.dev)")
	if len(got) != 1 || got[0].Title != "Foo" {
		t.Fatalf("got %#v", got)
	}
	if len(got[0].Subcategories) != 0 {
		t.Errorf("inline link created a subcategory: %#v", got[0])
	}
}

func TestParse_DescribedBulletStrict(t *testing.T) {
	// WHAT: Without Descriptions, "- [t](u) - desc" is a plain label.
	// WHY: The strict rule requires the link to be the whole bullet.
	got := quietParser(Config{}).Parse("## Platforms\n- [Node.js](https://nodejs.org) - JavaScript runtime.")
	sub := got[0].Subcategories[0]
	if sub.Title != "[Node.js](https://nodejs.org) - JavaScript runtime." || len(sub.Links) != 0 {
		t.Fatalf("got %#v", sub)
	}
}

func TestParse_DescribedBulletWithDescriptions(t *testing.T) {
	got := quietParser(Config{Descriptions: true}).Parse(
		"## Platforms\n- [Node.js](https://nodejs.org) - JavaScript runtime.\n  - [Deno](https://deno.land) – Secure runtime.")
	sub := got[0].Subcategories[0]
	want := []Link{
		{Title: "Node.js", URL: "https://nodejs.org", Description: "JavaScript runtime."},
		{Title: "Deno", URL: "https://deno.land", Description: "Secure runtime."},
	}
	if sub.Title != "Node.js" || !reflect.DeepEqual(sub.Links, want) {
		t.Fatalf("got %#v", sub)
	}
}

func TestParse_CRLF(t *testing.T) {
	got := quietParser(Config{}).Parse("## Foo\r\n- Bar\r\n- [Baz](https://baz.dev)\r\n")
	if got[0].Title != "Foo" || got[0].Subcategories[0].Links[0].URL != "https://baz.dev" {
		t.Fatalf("got %#v", got)
	}
}

func TestCount(t *testing.T) {
	cats := quietParser(Config{}).Parse("## A\n- a1\n- [x](https://x.dev)\n## B\n- b1\n- [y](https://y.dev)\n- [z](https://z.dev)")
	got := Count(cats)
	want := Stats{Categories: 2, Subcategories: 2, Links: 3}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}
