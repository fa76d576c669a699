package source

// Source is an installed extension record. Version, ABITag and ContractVersion
// always describe the package that is currently loaded, never whatever a
// repository index advertises.
type Source struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	URL             string `json:"url"`
	Version         string `json:"version"`
	ABITag          string `json:"abi_tag"`
	ContractVersion string `json:"contract_version"`
	Icon            string `json:"icon"`

	// HasUpdate is computed at query time against a repository index and is
	// never stored with the registry entry.
	HasUpdate bool `json:"has_update"`
}

// Descriptor is one entry of a remote repository index. It has the same shape
// as Source but is untrusted input: it only ever lives for the duration of a
// single index fetch.
type Descriptor struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	URL             string `json:"url"`
	Version         string `json:"version"`
	ABITag          string `json:"abi_tag"`
	ContractVersion string `json:"contract_version"`
	Icon            string `json:"icon"`
}

// Source converts a descriptor into the installed-source record for the
// package that was just loaded from it.
func (d Descriptor) Source() Source {
	return Source{
		ID:              d.ID,
		Name:            d.Name,
		URL:             d.URL,
		Version:         d.Version,
		ABITag:          d.ABITag,
		ContractVersion: d.ContractVersion,
		Icon:            d.Icon,
	}
}

// Filters carries source-specific search filters opaquely from the client to
// the extension.
type Filters map[string]interface{}

// Manga is the normalized manga record crossing the extension boundary.
type Manga struct {
	SourceID    int64    `json:"source_id"`
	Title       string   `json:"title"`
	Author      []string `json:"author"`
	Genre       []string `json:"genre"`
	Status      string   `json:"status,omitempty"`
	Description string   `json:"description,omitempty"`
	Path        string   `json:"path"`
	CoverURL    string   `json:"cover_url"`
}

// Chapter is the normalized chapter record crossing the extension boundary.
type Chapter struct {
	SourceID  int64   `json:"source_id"`
	Title     string  `json:"title"`
	Path      string  `json:"path"`
	Number    float64 `json:"number"`
	Scanlator string  `json:"scanlator,omitempty"`
	Uploaded  int64   `json:"uploaded"`
}
