package addon

import "github.com/vmunix/jellylink/pkg/catalogid"

// Catalog ids advertised in the manifest.
const (
	CatalogMovies = "jellyfin-movies"
	CatalogSeries = "jellyfin-series"
)

// Manifest is the Stremio add-on manifest.
type Manifest struct {
	ID          string         `json:"id"`
	Version     string         `json:"version"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Resources   []string       `json:"resources"`
	Types       []string       `json:"types"`
	Catalogs    []CatalogEntry `json:"catalogs"`
	IDPrefixes  []string       `json:"idPrefixes,omitempty"`
}

// CatalogEntry describes one browsable catalog.
type CatalogEntry struct {
	Type  string       `json:"type"`
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Extra []ExtraField `json:"extra,omitempty"`
}

// ExtraField is a catalog query parameter.
type ExtraField struct {
	Name       string `json:"name"`
	IsRequired bool   `json:"isRequired"`
}

func buildManifest(cfg Config) Manifest {
	extra := []ExtraField{
		{Name: "skip", IsRequired: false},
		{Name: "search", IsRequired: false},
	}
	return Manifest{
		ID:          cfg.ID,
		Version:     cfg.Version,
		Name:        cfg.Name,
		Description: "Stream from Jellyfin, or request missing titles through Jellyseerr",
		Resources:   []string{"catalog", "stream"},
		Types:       []string{string(catalogid.KindMovie), string(catalogid.KindSeries)},
		Catalogs: []CatalogEntry{
			{Type: string(catalogid.KindMovie), ID: CatalogMovies, Name: cfg.Name + " Movies", Extra: extra},
			{Type: string(catalogid.KindSeries), ID: CatalogSeries, Name: cfg.Name + " Series", Extra: extra},
		},
		IDPrefixes: []string{"tt"},
	}
}
