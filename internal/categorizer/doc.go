// Package categorizer decides the single category of a request.
//
// The Dispatcher walks three phases of candidate categories (metadata hints,
// then highly possible, then the remaining possible ones) and asks a
// classification oracle about each until one answers yes. Adult categories are
// checked file by file because one download may mix coded and uncoded videos.
// When no phase produces a yes, a decision oracle picks a category from all
// evidence collected in the Context.
package categorizer
