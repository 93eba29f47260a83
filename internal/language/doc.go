// Package language normalizes language codes and maps them onto the library's
// language buckets and subtitle naming convention.
package language
