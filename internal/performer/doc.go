// Package performer maps credited performer names to library directories.
//
// The alias store is a JSON object from directory name to every known alias
// of that performer. Readers load it without locking; writers take an
// exclusive lock on "<store>.lock", re-read the file, merge, and replace it
// atomically so concurrent mediasort processes never lose each other's
// entries. Unknown performers are looked up on JavDB and the hits are checked
// by an oracle before a directory is created for them.
package performer
