package models

// DirectoryEntry is one bicycle shop found on OpenStreetMap, enriched with
// the span of its website captures on the Wayback Machine.
type DirectoryEntry struct {
	Name          string
	Address       string
	Website       string
	Lat           *float64
	Lon           *float64
	ArchiveOldest string
	ArchiveNewest string
}

// PriceCandidate is a price-looking text fragment found on a shop website.
type PriceCandidate struct {
	ShopName string
	Website  string
	Snippet  string
	Value    float64
}
