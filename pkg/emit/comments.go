package emit

import (
	"strings"

	"github.com/mash-protocol/regtokens/pkg/specparse"
)

// Comments renders attributes as comment lines without the "//" prefix.
// Doc attributes come first, then a Deprecated paragraph, then every other
// attribute verbatim as #[...]. Paragraphs are separated by an empty line.
func Comments(attrs []specparse.Attribute) []string {
	var docs, other []string
	deprecated := ""
	for _, a := range attrs {
		if doc, ok := a.Doc(); ok {
			docs = append(docs, strings.Split(doc, "\n")...)
			continue
		}
		if note, ok := a.Deprecated(); ok {
			deprecated = "Deprecated."
			if note != "" {
				deprecated = "Deprecated: " + note
			}
			continue
		}
		other = append(other, "#["+a.Text+"]")
	}
	return paragraphs(docs, lines(deprecated), other)
}

// WithSummary is Comments with summary used as the first line when attrs
// carry no documentation.
func WithSummary(summary string, attrs []specparse.Attribute) []string {
	for _, a := range attrs {
		if _, ok := a.Doc(); ok {
			return Comments(attrs)
		}
	}
	rest := Comments(attrs)
	if len(rest) == 0 {
		return []string{summary}
	}
	return append([]string{summary, ""}, rest...)
}

func lines(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

func paragraphs(groups ...[]string) []string {
	var out []string
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		if len(out) > 0 {
			out = append(out, "")
		}
		out = append(out, g...)
	}
	return out
}
