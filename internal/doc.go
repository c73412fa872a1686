// Package internal documents the Event Finder server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, response writing, and routing
// - domain: business logic and domain models (users, events)
// - storage: MongoDB access and repositories
// - auth, config, metrics, sanitize, uploads: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
