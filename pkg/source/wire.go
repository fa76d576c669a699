package source

import (
	"encoding/json"
	"fmt"
)

// wireManga is the camelCase shape extensions emit for a manga record. It is
// the single definition of the manga boundary schema; nothing else in the
// repository may decode extension manga output directly.
type wireManga struct {
	SourceID    int64    `json:"sourceId"`
	Title       string   `json:"title"`
	Author      []string `json:"author"`
	Genre       []string `json:"genre"`
	Status      *string  `json:"status"`
	Description *string  `json:"description"`
	Path        string   `json:"path"`
	CoverURL    string   `json:"coverUrl"`
}

// wireChapter is the camelCase shape extensions emit for a chapter record.
type wireChapter struct {
	SourceID  int64   `json:"sourceId"`
	Title     string  `json:"title"`
	Path      string  `json:"path"`
	Number    float64 `json:"number"`
	Scanlator *string `json:"scanlator"`
	Uploaded  int64   `json:"uploaded"`
}

func (w wireManga) host(sourceID int64) (Manga, error) {
	if w.Title == "" {
		return Manga{}, fmt.Errorf("manga record missing title")
	}
	if w.Path == "" {
		return Manga{}, fmt.Errorf("manga record missing path")
	}
	m := Manga{
		SourceID: sourceID,
		Title:    w.Title,
		Author:   w.Author,
		Genre:    w.Genre,
		Path:     w.Path,
		CoverURL: w.CoverURL,
	}
	if w.Status != nil {
		m.Status = *w.Status
	}
	if w.Description != nil {
		m.Description = *w.Description
	}
	return m, nil
}

func (w wireChapter) host(sourceID int64) (Chapter, error) {
	if w.Path == "" {
		return Chapter{}, fmt.Errorf("chapter record missing path")
	}
	c := Chapter{
		SourceID: sourceID,
		Title:    w.Title,
		Path:     w.Path,
		Number:   w.Number,
		Uploaded: w.Uploaded,
	}
	if w.Scanlator != nil {
		c.Scanlator = *w.Scanlator
	}
	return c, nil
}

// DecodeManga converts a single extension-native manga payload into the host
// record, stamping the registry-known source id.
func DecodeManga(raw json.RawMessage, sourceID int64) (Manga, error) {
	var w wireManga
	if err := json.Unmarshal(raw, &w); err != nil {
		return Manga{}, fmt.Errorf("decode manga: %w", err)
	}
	return w.host(sourceID)
}

// DecodeMangaList converts an extension-native manga collection, preserving
// element order.
func DecodeMangaList(raw json.RawMessage, sourceID int64) ([]Manga, error) {
	var ws []wireManga
	if err := json.Unmarshal(raw, &ws); err != nil {
		return nil, fmt.Errorf("decode manga list: %w", err)
	}
	out := make([]Manga, 0, len(ws))
	for i, w := range ws {
		m, err := w.host(sourceID)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// DecodeChapterList converts an extension-native chapter collection,
// preserving element order.
func DecodeChapterList(raw json.RawMessage, sourceID int64) ([]Chapter, error) {
	var ws []wireChapter
	if err := json.Unmarshal(raw, &ws); err != nil {
		return nil, fmt.Errorf("decode chapter list: %w", err)
	}
	out := make([]Chapter, 0, len(ws))
	for i, w := range ws {
		c, err := w.host(sourceID)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// DecodePages converts an extension-native page payload, a JSON array of image
// URLs.
func DecodePages(raw json.RawMessage) ([]string, error) {
	var pages []string
	if err := json.Unmarshal(raw, &pages); err != nil {
		return nil, fmt.Errorf("decode pages: %w", err)
	}
	return pages, nil
}

// EncodeManga renders a host manga record in the wire shape. It is the inverse
// of DecodeManga and exists so the boundary mapping stays bidirectional in one
// place; the local engine's test fixtures and the plugin SDK both use it.
func EncodeManga(m Manga) (json.RawMessage, error) {
	w := wireManga{
		SourceID: m.SourceID,
		Title:    m.Title,
		Author:   m.Author,
		Genre:    m.Genre,
		Path:     m.Path,
		CoverURL: m.CoverURL,
	}
	if m.Status != "" {
		w.Status = &m.Status
	}
	if m.Description != "" {
		w.Description = &m.Description
	}
	return json.Marshal(w)
}

// EncodeChapter renders a host chapter record in the wire shape.
func EncodeChapter(c Chapter) (json.RawMessage, error) {
	w := wireChapter{
		SourceID: c.SourceID,
		Title:    c.Title,
		Path:     c.Path,
		Number:   c.Number,
		Uploaded: c.Uploaded,
	}
	if c.Scanlator != "" {
		w.Scanlator = &c.Scanlator
	}
	return json.Marshal(w)
}
