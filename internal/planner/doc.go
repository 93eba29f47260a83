// Package planner turns a categorized request into a move plan: one action
// per file (or directory, for simple categories) naming where it goes below
// the library root. Planning never touches the download directory except to
// sample subtitle text through the Sampler.
package planner
