// Package compatibility decides whether an extension package may be loaded
// into this server and whether a repository offers a newer build.
//
// The ABI/contract gate uses exact string equality on both the ABI tag and the
// contract version. An extension built against a different toolchain or
// interface revision is binary-incompatible, not merely older, so a range
// match would be wrong here.
package compatibility
