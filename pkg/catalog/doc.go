// Package catalog is the surface the presentation layer talks to: source
// lifecycle operations plus the six catalog reads, all forwarded through the
// extension bus. It adds no behavior of its own: ordering of catalog data is
// whatever the extension returned, and errors pass through untranslated for
// the transport layer to map.
package catalog
