package envelope

import (
	"regexp"

	"github.com/baalimago/agiml/pkg/agiml/models"
)

// Format is the metadata marker set on every enveloped request.
const Format = "agiml"

// MetadataFormatKey is the metadata key Format is stored under.
const MetadataFormatKey = "format"

var assistantEnvelope = regexp.MustCompile(`(?s)<message>\s*<assistant>(.*?)</assistant>\s*</message>`)

// InjectSpec appends spec to the first system message, separated by a blank
// line, or prepends a new system message holding only spec.
func InjectSpec(msgs []models.Message, spec string) []models.Message {
	for i := range msgs {
		if msgs[i].Role == models.RoleSystem {
			msgs[i].Content = msgs[i].Content + "\n\n" + spec
			return msgs
		}
	}
	ret := make([]models.Message, 0, len(msgs)+1)
	ret = append(ret, models.Message{Role: models.RoleSystem, Content: spec})
	return append(ret, msgs...)
}

// WrapUser places text inside a user envelope. Nothing is escaped.
func WrapUser(text string) string {
	return "<message><user>" + text + "</user></message>"
}

// Unwrap replaces the first assistant envelope in text with its content.
// Text without an envelope is returned as-is.
func Unwrap(text string) string {
	loc := assistantEnvelope.FindStringSubmatchIndex(text)
	if loc == nil {
		return text
	}
	return text[:loc[0]] + text[loc[2]:loc[3]] + text[loc[1]:]
}
