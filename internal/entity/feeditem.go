package entity

// ItemKind discriminates the feed item union. Only ItemStatus and
// ItemNotification ever reach persistence; the rest are transient UI rows.
type ItemKind uint8

const (
	ItemStatus ItemKind = iota
	ItemLoading
	ItemNotification
	ItemFilteredNotificationsInfo
)

// ItemRef is a typed reference to a feed item, used for identity-cache
// lookups that need to know which map to consult.
type ItemRef struct {
	Kind ItemKind
	ID   string
}

// DisplayInfo is the minimal snapshot needed to render a placeholder row
// before the full entity is re-fetched. HasMore marks a gap in the timeline
// after the item and drives the load-more affordance.
type DisplayInfo struct {
	Author  string `json:"author"`
	Excerpt string `json:"excerpt"`
	HasMore bool   `json:"has_more"`
}

// FeedItem is one renderable unit of a timeline. Order among items is
// significant and caller-supplied.
type FeedItem struct {
	Kind    ItemKind
	ID      string
	Display DisplayInfo
}

// Ref returns the typed reference for identity-cache lookups.
func (i FeedItem) Ref() ItemRef {
	return ItemRef{Kind: i.Kind, ID: i.ID}
}

// CachedPostRecord is the serialized form of a post row in the order file.
type CachedPostRecord struct {
	ID      string      `json:"id"`
	Display DisplayInfo `json:"display"`
}
