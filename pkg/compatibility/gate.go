package compatibility

import "runtime"

// ContractVersion is the version of the extension interface this server
// implements. Extensions declare the contract version they were built against
// in the repository index and in their manifest.
const ContractVersion = "1.0.0"

// HostABITag identifies the toolchain/runtime this server was built with.
// Extension packages must be built for the same tag.
func HostABITag() string {
	return runtime.Version()
}

// Gate checks extension packages against the host identity. The zero value is
// unusable; construct with NewGate, or populate the fields directly in tests.
type Gate struct {
	ABITag          string
	ContractVersion string
}

// NewGate returns a gate pinned to this server's identity.
func NewGate() Gate {
	return Gate{
		ABITag:          HostABITag(),
		ContractVersion: ContractVersion,
	}
}

// Compatible reports whether a package built for the given ABI tag and
// contract version may be loaded. Both comparisons are exact string equality.
func (g Gate) Compatible(abiTag, contractVersion string) bool {
	return abiTag == g.ABITag && contractVersion == g.ContractVersion
}
