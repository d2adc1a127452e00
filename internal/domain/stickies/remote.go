package stickies

import "time"

// PageProperties is the property set written to a remote page.
type PageProperties struct {
	Title       string
	Created     time.Time
	Modified    time.Time
	Fingerprint string
	Color       Color
}

// PropertiesFor builds the remote property set of a note.
func PropertiesFor(n Note, fingerprint string) PageProperties {
	return PageProperties{
		Title:       n.Title,
		Created:     n.Created,
		Modified:    n.Modified,
		Fingerprint: fingerprint,
		Color:       n.Color,
	}
}

type DatabaseInfo struct {
	ID    string
	Title string
}

// IndexedPage is one existing remote page and the fingerprint stored on it.
type IndexedPage struct {
	PageID      string
	Fingerprint string
}

// PageBatch is one page of a cursor-paginated query.
type PageBatch struct {
	Pages      []IndexedPage
	NextCursor string
	HasMore    bool
}
