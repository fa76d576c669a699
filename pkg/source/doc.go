// Package source defines the records shared between the server and its
// manga-source extensions.
//
// # Records
//
// Source: an installed extension as the rest of the server sees it
// Descriptor: the untrusted shape decoded from a repository index; never persisted
// Manga, Chapter: normalized catalog records produced at the extension boundary
//
// # Wire schema
//
// Extensions speak camelCase JSON. The mapping between that wire shape and the
// host records is defined once per record type (DecodeManga/EncodeManga and
// friends) so the boundary contract lives in exactly one place instead of
// being scattered across call sites.
package source
