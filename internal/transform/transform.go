package transform

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/baalimago/agiml/internal/directive"
	"github.com/baalimago/agiml/internal/envelope"
	"github.com/baalimago/agiml/internal/imagelink"
	"github.com/baalimago/agiml/internal/settings"
	"github.com/baalimago/agiml/internal/spec"
	"github.com/baalimago/agiml/pkg/agiml/models"
	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/debug"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
)

const Name = "agiml"

// MetadataToolsKey is where the default tools are advertised in the request metadata.
const MetadataToolsKey = "tools"

const (
	StageBefore = "before_request"
	StageAfter  = "after_response"

	OutcomeConverted = "converted"
	OutcomeFallback  = "fallback"
	OutcomeSkipped   = "skipped"
)

// Observer is notified of every processed stage and directive.
type Observer interface {
	ObserveStage(stage string)
	ObserveDirective(outcome string)
}

type Option func(*Converter)

func WithObserver(o Observer) Option {
	return func(c *Converter) {
		c.observer = o
	}
}

// Converter turns image directives of model responses into markdown image
// links. It needs no specification.
type Converter struct {
	settings settings.Settings
	synth    imagelink.Synthesizer
	observer Observer
}

func NewConverter(s settings.Settings, opts ...Option) *Converter {
	c := &Converter{
		settings: s,
		synth: imagelink.Synthesizer{
			Endpoint:     s.Endpoint,
			EncodeParams: s.EncodeParams,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Converter) Settings() settings.Settings {
	return c.settings
}

// Middleware embeds the specification into outgoing conversations and
// converts incoming responses. No field is written after construction, so
// one instance may serve any number of conversations concurrently.
type Middleware struct {
	*Converter
	spec string
}

var _ models.Middleware = (*Middleware)(nil)

// New middleware using specText as the specification.
func New(s settings.Settings, specText string, opts ...Option) (*Middleware, error) {
	if specText == "" {
		return nil, fmt.Errorf("failed to create middleware: %w", spec.ErrMissingSpecification)
	}
	m := &Middleware{
		Converter: NewConverter(s, opts...),
		spec:      specText,
	}
	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.PrintOK(fmt.Sprintf("created %v middleware with settings: %v\n", Name, debug.IndentedJsonFmt(s)))
	}
	return m, nil
}

// Load the spec named by the settings from src, then create the middleware.
func Load(ctx context.Context, s settings.Settings, src spec.Source, opts ...Option) (*Middleware, error) {
	text, err := src.Load(ctx, s.Spec)
	if err != nil {
		return nil, fmt.Errorf("failed to load spec '%v': %w", s.Spec, err)
	}
	return New(s, text, opts...)
}

func (m *Middleware) Name() string {
	return Name
}

func (m *Middleware) Spec() string {
	return m.spec
}

// BeforeRequest injects the spec into the system message, envelopes the user
// message and marks the metadata with the format. conv itself is not modified.
func (m *Middleware) BeforeRequest(_ context.Context, conv models.Conversation) (models.Conversation, error) {
	ret := conv.Clone()
	ret.Messages = envelope.InjectSpec(ret.Messages, m.spec)
	ret.UserMessage = envelope.WrapUser(ret.UserMessage)
	if ret.Metadata == nil {
		ret.Metadata = make(map[string]any)
	}
	ret.Metadata[envelope.MetadataFormatKey] = envelope.Format
	if _, exists := ret.Metadata[MetadataToolsKey]; !exists && len(m.settings.DefaultTools) > 0 {
		ret.Metadata[MetadataToolsKey] = m.settings.Tools()
	}
	m.observeStage(StageBefore)
	return ret, nil
}

// AfterResponse converts the response, if there is one. Directives which
// fail to convert are logged and left as-is, this never returns an error.
func (m *Middleware) AfterResponse(_ context.Context, conv models.Conversation) (models.Conversation, error) {
	if !conv.HasResponse() {
		return conv, nil
	}
	ret := conv.Clone()
	converted, err := m.ProcessResponse(*ret.Response)
	if err != nil {
		ancli.Warnf("kept original markup for some directives: %v\n", err)
	}
	ret.Response = &converted
	m.observeStage(StageAfter)
	return ret, nil
}

// ProcessResponse strips the assistant envelope and converts image
// directives. A directive that fails to convert keeps its original markup
// while the others are still converted; the failures are returned joined.
func (c *Converter) ProcessResponse(response string) (string, error) {
	text := envelope.Unwrap(response)
	if !c.settings.Supports(settings.IMAGE) {
		for range directive.Find(text) {
			c.observeDirective(OutcomeSkipped)
		}
		return text, nil
	}
	out, errs := directive.Replace(text, func(d directive.Match) (string, error) {
		md, err := c.synth.Convert(d)
		if err != nil {
			c.observeDirective(OutcomeFallback)
			return "", fmt.Errorf("directive at offset %v: %w", d.Start, err)
		}
		c.observeDirective(OutcomeConverted)
		return md, nil
	})
	return out, errors.Join(errs...)
}

func (c *Converter) observeStage(stage string) {
	if c.observer != nil {
		c.observer.ObserveStage(stage)
	}
}

func (c *Converter) observeDirective(outcome string) {
	if c.observer != nil {
		c.observer.ObserveDirective(outcome)
	}
}
