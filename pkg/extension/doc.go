// Package extension manages the lifecycle and dispatch of manga-source
// extensions.
//
// # Overview
//
// Registry: the bus, the map of currently loaded extensions keyed by source
// id, with one uniform dispatch surface for every catalog read
// IndexClient: fetches a repository's index.json listing available packages
// Manager: installs, updates and uninstalls extensions, consulting the
// compatibility gate before any mutation
// Runtime/Handle: the contract consumed from the execution engine that
// actually runs extension code (pkg/engine/local provides one)
//
// # Safety
//
// Loading a package built against a different ABI tag or contract version can
// corrupt the host process, so the Manager refuses anything the gate does not
// pass, and the Registry never silently replaces an entry. Catalog dispatch
// proceeds concurrently; lifecycle transitions are serialized.
package extension
