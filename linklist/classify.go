// CLAUDE:SUMMARY Ordered line classifier chain: skip, contents marker, heading, bullet, inline link.
package linklist

import (
	"regexp"
	"strings"
)

// lineKind is the outcome of classifying one trimmed line.
type lineKind int

const (
	kindSkip       lineKind = iota // blank, markup, or nothing usable
	kindContents                   // "## Contents" navigation heading
	kindCategory                   // "## Title"
	kindBulletLink                 // "- [title](url)"
	kindLabel                      // "- plain label"
	kindInline                     // text with an embedded, valid link
)

func (k lineKind) String() string {
	switch k {
	case kindSkip:
		return "skip"
	case kindContents:
		return "contents"
	case kindCategory:
		return "category"
	case kindBulletLink:
		return "bullet_link"
	case kindLabel:
		return "label"
	case kindInline:
		return "inline"
	default:
		return "unknown"
	}
}

// lineClass carries what a classifier extracted from a line.
type lineClass struct {
	kind  lineKind
	title string // category title or subcategory label
	link  Link
}

const (
	headingMarker = "## "
	bulletMarker  = "- "
)

var patterns = struct {
	contents    *regexp.Regexp
	bulletLink  *regexp.Regexp
	describedLk *regexp.Regexp
	inlineLink  *regexp.Regexp
}{
	contents:    regexp.MustCompile(`(?i)^##\s*contents\s*$`),
	bulletLink:  regexp.MustCompile(`^\[([^\]]*)\]\(((?:[^()]|\([^()]*\))*)\)$`),
	describedLk: regexp.MustCompile(`^\[([^\]]*)\]\(((?:[^()\s]|\([^()\s]*\))*)\)\s+[-–—]\s+(.+)$`),
	inlineLink:  regexp.MustCompile(`\[([^\]]*)\]\(((?:[^()\s]|\([^()\s]*\))*)\)`),
}

// classifyOptions are the parser settings a classifier may depend on.
type classifyOptions struct {
	descriptions bool
}

// rule inspects a trimmed line and reports whether it claims it.
type rule struct {
	name  string
	match func(line string, opts classifyOptions) (lineClass, bool)
}

// rules is evaluated top to bottom; the first rule that claims a line wins.
var rules = []rule{
	{"skip", matchSkip},
	{"contents", matchContents},
	{"category", matchCategory},
	{"bullet", matchBullet},
	{"inline", matchInline},
}

// classify runs the rule chain over a trimmed line. Lines no rule claims
// are reported as kindSkip.
func classify(line string, opts classifyOptions) lineClass {
	for _, r := range rules {
		if c, ok := r.match(line, opts); ok {
			return c
		}
	}
	return lineClass{kind: kindSkip}
}

func matchSkip(line string, _ classifyOptions) (lineClass, bool) {
	if line == "" || strings.HasPrefix(line, "<") {
		return lineClass{kind: kindSkip}, true
	}
	return lineClass{}, false
}

func matchContents(line string, _ classifyOptions) (lineClass, bool) {
	if patterns.contents.MatchString(line) {
		return lineClass{kind: kindContents}, true
	}
	return lineClass{}, false
}

func matchCategory(line string, _ classifyOptions) (lineClass, bool) {
	if !strings.HasPrefix(line, headingMarker) {
		return lineClass{}, false
	}
	title := strings.TrimSpace(line[len(headingMarker):])
	return lineClass{kind: kindCategory, title: title}, true
}

func matchBullet(line string, opts classifyOptions) (lineClass, bool) {
	if !strings.HasPrefix(line, bulletMarker) {
		return lineClass{}, false
	}
	content := strings.TrimSpace(line[len(bulletMarker):])

	if m := patterns.bulletLink.FindStringSubmatch(content); m != nil {
		return lineClass{kind: kindBulletLink, link: Link{Title: m[1], URL: m[2]}}, true
	}
	if opts.descriptions {
		if m := patterns.describedLk.FindStringSubmatch(content); m != nil {
			return lineClass{kind: kindBulletLink, link: Link{
				Title:       m[1],
				URL:         m[2],
				Description: strings.TrimSpace(m[3]),
			}}, true
		}
	}
	return lineClass{kind: kindLabel, title: content}, true
}

// matchInline claims every remaining line. Lines without a link, or whose
// link fails URL validation, become kindSkip.
func matchInline(line string, _ classifyOptions) (lineClass, bool) {
	m := patterns.inlineLink.FindStringSubmatch(line)
	if m == nil || !ValidURL(m[2]) {
		return lineClass{kind: kindSkip}, true
	}
	return lineClass{kind: kindInline, link: Link{Title: m[1], URL: m[2]}}, true
}
