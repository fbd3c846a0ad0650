package directive

import (
	"regexp"
	"strings"
)

var (
	imageDirective = regexp.MustCompile(`(?s)<image(.*?)>(.*?)</image>`)
	attribute      = regexp.MustCompile(`(\w+)="([^"]*?)"`)
)

// Match is one <image ...>...</image> occurrence. Start and End are byte
// offsets of the whole directive within the scanned text.
type Match struct {
	Attrs   Attributes
	RawAttr string
	Content string
	Start   int
	End     int
}

// Raw returns the original markup of the match within text.
func (m Match) Raw(text string) string {
	return text[m.Start:m.End]
}

// Find returns every non-overlapping image directive in text, left to right.
// The first </image> after an opening tag closes it, so nested directives
// are not supported. An opening tag without a closing one is plain text.
func Find(text string) []Match {
	locs := imageDirective.FindAllStringSubmatchIndex(text, -1)
	ret := make([]Match, 0, len(locs))
	for _, loc := range locs {
		raw := text[loc[2]:loc[3]]
		ret = append(ret, Match{
			Attrs:   ParseAttributes(raw),
			RawAttr: raw,
			Content: text[loc[4]:loc[5]],
			Start:   loc[0],
			End:     loc[1],
		})
	}
	return ret
}

// Replace substitutes every directive in text with the output of fn. When fn
// returns an error the directive keeps its original markup. All errors are
// returned in order of appearance alongside the rewritten text.
func Replace(text string, fn func(Match) (string, error)) (string, []error) {
	matches := Find(text)
	if len(matches) == 0 {
		return text, nil
	}
	var sb strings.Builder
	var errs []error
	last := 0
	for _, m := range matches {
		sb.WriteString(text[last:m.Start])
		out, err := fn(m)
		if err != nil {
			errs = append(errs, err)
			out = m.Raw(text)
		}
		sb.WriteString(out)
		last = m.End
	}
	sb.WriteString(text[last:])
	return sb.String(), errs
}
