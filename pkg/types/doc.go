// Package types defines the Backend interface, the Record shape, collection
// names, configuration and the standard error types shared by the biblio
// engine, its storage backends and its callers.
//
// Records are untyped JSON objects. Their shape is described by the schema
// registry (internal/schema), not by Go structs, so one engine serves every
// entity.
package types
