// Package agiml exposes a middleware for chat pipelines which speaks AGIML
// with the model on behalf of the client.
//
// Before the model call, the middleware appends the AGIML specification to the
// system message and wraps the user message in an envelope. After the model
// call, it strips the assistant envelope from the response and turns every
// <image ...>...</image> directive into a markdown image which links to an
// image generation service.
//
//	ctx := context.Background()
//	mw, err := agiml.New(ctx, agiml.WithSpec("minimal"))
//	if err != nil {
//	    // handle error, most likely a missing specification
//	}
//	conv, _ = mw.BeforeRequest(ctx, conv)
//	// ... query the model, set conv.Response ...
//	conv, _ = mw.AfterResponse(ctx, conv)
package agiml
