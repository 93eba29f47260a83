// Package media defines the shared vocabulary of the sorting pipeline: the
// closed category and verdict enumerations, the library target directories,
// the inbound request, and the move-plan actions emitted by the planner.
//
// Everything in this package is plain data. Classification, dispatch and
// placement live in their own packages and only exchange these types.
package media
