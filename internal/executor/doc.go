// Package executor runs GraphQL operations level by level so that remote
// work can be batched.
//
// Fields come in two flavours, chosen by schema.Field.Async when the schema
// is built. Sync fields are read straight off their source value through
// Runtime.ResolveSync and completed on the spot; descending through them never
// costs a round trip. Async fields are queued with their response path and
// handed to Runtime.BatchResolveAsync together with every other async field
// found at the same depth. Their results are completed, which may queue the
// next depth, and the loop repeats until the queue is empty. A query whose
// deepest chain crosses d async fields therefore makes exactly d batch calls.
//
// For lngraph the Query root fields are the async ones: each maps to one lnd
// RPC. Mutation roots are sync so they run one after another in document
// order, and subscription roots are opened through StreamRuntime.
//
// # Nulls and errors
//
// Resolver failures and Non-Null violations become located errors; the rest
// of the response still resolves. A null inside a sync subtree propagates to
// the nearest nullable ancestor. A null for a Non-Null async field nulls the
// top level field it belongs to, and any queued work below that field is
// dropped before the next batch.
//
// # Subscriptions
//
// Subscribe opens one SourceStream for the single root field of a
// subscription operation and executes the selection set once per event, with
// the event as root value.
package executor
