package imagelink

import (
	"errors"
	"regexp"
	"strings"

	"github.com/baalimago/agiml/internal/directive"
)

// ErrDecodeFailure is returned when a prompt can't be percent-decoded for the
// human readable parts of the markdown.
var ErrDecodeFailure = errors.New("failed to decode prompt")

// TypeAttribute only disambiguates generation modality, so it is never sent
// to the image service. Matching is case-sensitive.
const TypeAttribute = "type"

var (
	disallowed = regexp.MustCompile(`[^a-zA-Z0-9.,!()\[\] ]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// SanitizePrompt turns raw directive content into a prompt which may be placed
// after 'prompt=' in a query. Each space separated token is encoded on its own
// and the tokens are joined with '%20'.
func SanitizePrompt(content string) string {
	p := strings.TrimSpace(content)
	p = strings.ReplaceAll(p, "\n", " ")
	p = disallowed.ReplaceAllString(p, "")
	p = whitespace.ReplaceAllString(p, " ")
	tokens := strings.Split(p, " ")
	for i, tok := range tokens {
		tokens[i] = EncodeComponent(tok)
	}
	return strings.Join(tokens, "%20")
}

// Synthesizer builds image links against a single endpoint.
type Synthesizer struct {
	Endpoint string
	// EncodeParams controls percent-encoding of carried over attributes. The
	// prompt is always encoded.
	EncodeParams bool
}

// URL returns endpoint + '/image?prompt=' + prompt, followed by every
// attribute except 'type' as a query parameter, in attribute order.
func (s Synthesizer) URL(prompt string, attrs directive.Attributes) string {
	var sb strings.Builder
	sb.WriteString(s.Endpoint)
	sb.WriteString("/image?prompt=")
	sb.WriteString(prompt)
	attrs.Each(func(k, v string) {
		if k == TypeAttribute {
			return
		}
		if s.EncodeParams {
			k, v = EncodeComponent(k), EncodeComponent(v)
		}
		sb.WriteString("&")
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(v)
	})
	return sb.String()
}

// Markdown returns an image whose alt text and italic caption are the decoded
// prompt, linking to the encoded URL.
func (s Synthesizer) Markdown(prompt string, attrs directive.Attributes) (string, error) {
	readable, err := DecodeComponent(prompt)
	if err != nil {
		return "", err
	}
	return "![" + readable + "](" + s.URL(prompt, attrs) + ")\n*" + readable + "*", nil
}

// Convert sanitizes the content of m and returns its markdown replacement.
func (s Synthesizer) Convert(m directive.Match) (string, error) {
	return s.Markdown(SanitizePrompt(m.Content), m.Attrs)
}
