// Package models contains the public data structures exchanged between a
// chat pipeline and the agiml middleware. These types are intentionally
// small and decoupled from internal representations so that they can remain
// stable for external consumers.
//
// The main entry points are:
//
//   - Conversation: the ordered Messages of a chat, the pending user
//     message, request metadata and, after the model call, the response.
//   - Message: a single chat message with a role and text content.
//   - Middleware: the contract a pipeline uses to run a transform before
//     and after the model call.
package models
