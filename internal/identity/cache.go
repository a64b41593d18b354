// Package identity holds the process-wide cache of the latest known
// representation of every fetched entity, keyed by id. It is the single
// authoritative answer to "what do we currently know about item X",
// independent of which screen fetched it.
package identity

import (
	"sync"

	"github.com/pders01/feedcache/internal/entity"
)

// FollowRequestState tracks what the user did to a follow request row, so
// the UI can keep rendering the outcome after the request leaves the feed.
type FollowRequestState uint8

const (
	FollowRequestPending FollowRequestState = iota
	FollowRequestAccepted
	FollowRequestRejected
)

// Cache is safe for concurrent use; every read and mutation is serialized
// through one mutex, so readers always observe fully-upserted entities.
// Construct one per signed-in session and call Clear on account switch.
type Cache struct {
	mu                 sync.Mutex
	statuses           map[string]*entity.Status
	notifications      map[string]*entity.Notification
	notificationGroups map[string]*entity.NotificationGroup
	fullAccounts       map[string]*entity.Account
	partialAccounts    map[string]*entity.AccountSummary
	relationships      map[string]*entity.Relationship

	// Override sets are keyed by resolved content id (a boost keys on the
	// boosted post), never by the wrapper id.
	showDespiteFilter map[string]struct{}
	showDespiteCW     map[string]struct{}

	followRequests map[string]FollowRequestState
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	c := &Cache{}
	c.reset()
	return c
}

func (c *Cache) reset() {
	c.statuses = make(map[string]*entity.Status)
	c.notifications = make(map[string]*entity.Notification)
	c.notificationGroups = make(map[string]*entity.NotificationGroup)
	c.fullAccounts = make(map[string]*entity.Account)
	c.partialAccounts = make(map[string]*entity.AccountSummary)
	c.relationships = make(map[string]*entity.Relationship)
	c.showDespiteFilter = make(map[string]struct{})
	c.showDespiteCW = make(map[string]struct{})
	c.followRequests = make(map[string]FollowRequestState)
}

// Clear drops every entry. Callers must invoke this on account switch;
// leaving it out leaks one account's data into the next session.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

// UpsertStatus stores the latest known representation of a status.
func (c *Cache) UpsertStatus(st *entity.Status) {
	if st == nil || st.ID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses[st.ID] = st
}

// UpsertNotification stores the latest known representation of a notification.
func (c *Cache) UpsertNotification(n *entity.Notification) {
	if n == nil || n.ID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications[n.ID] = n
}

// UpsertNotificationGroup stores the latest known notification group.
func (c *Cache) UpsertNotificationGroup(g *entity.NotificationGroup) {
	if g == nil || g.ID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notificationGroups[g.ID] = g
}

// UpsertAccount stores a full account. A full account supersedes any partial
// entry for the same id; the partial copy is dropped so lookups never fall
// back to the less complete one.
func (c *Cache) UpsertAccount(a *entity.Account) {
	if a == nil || a.ID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fullAccounts[a.ID] = a
	delete(c.partialAccounts, a.ID)
}

// UpsertPartialAccount stores a partial account. It never displaces a full
// account for the same id.
func (c *Cache) UpsertPartialAccount(a *entity.AccountSummary) {
	if a == nil || a.ID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.partialAccounts[a.ID] = a
}

// UpsertRelationship stores the latest relationship to an account.
func (c *Cache) UpsertRelationship(r *entity.Relationship) {
	if r == nil || r.AccountID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.relationships[r.AccountID] = r
}

// Status returns the cached status for id, or nil. It never fetches.
func (c *Cache) Status(id string) *entity.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statuses[id]
}

// Notification returns the cached notification for id, or nil.
func (c *Cache) Notification(id string) *entity.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notifications[id]
}

// NotificationGroup returns the cached notification group for id, or nil.
func (c *Cache) NotificationGroup(id string) *entity.NotificationGroup {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notificationGroups[id]
}

// FullAccount returns the cached full account for id, or nil.
func (c *Cache) FullAccount(id string) *entity.Account {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fullAccounts[id]
}

// PartialAccount returns the cached partial account for id, or nil.
func (c *Cache) PartialAccount(id string) *entity.AccountSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.partialAccounts[id]
}

// Relationship returns the cached relationship to the given account, or nil.
func (c *Cache) Relationship(accountID string) *entity.Relationship {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.relationships[accountID]
}

// FilterableStatus resolves a feed item reference to the text-bearing status
// behind it: a boost resolves to the boosted post, a notification to its
// attached status (again resolved through any boost). Returns nil for
// references with no associated text.
func (c *Cache) FilterableStatus(ref entity.ItemRef) *entity.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filterableStatusLocked(ref)
}

func (c *Cache) filterableStatusLocked(ref entity.ItemRef) *entity.Status {
	switch ref.Kind {
	case entity.ItemStatus:
		return entity.FilterableStatus(c.statuses[ref.ID])
	case entity.ItemNotification:
		n := c.notifications[ref.ID]
		if n == nil || n.StatusID == "" {
			return nil
		}
		return entity.FilterableStatus(c.statuses[n.StatusID])
	default:
		return nil
	}
}

// contentIDLocked resolves a reference to its override key. When the status
// is not cached yet the raw id keys the set, so a toggle issued before the
// entity arrives still lands somewhere stable.
func (c *Cache) contentIDLocked(ref entity.ItemRef) string {
	if fs := c.filterableStatusLocked(ref); fs != nil {
		return fs.ID
	}
	return ref.ID
}

// ShowDespiteFilter reports whether the user chose to reveal the item's
// content even though a filter rule hides it.
func (c *Cache) ShowDespiteFilter(ref entity.ItemRef) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.showDespiteFilter[c.contentIDLocked(ref)]
	return ok
}

// ToggleShowDespiteFilter flips the filter override for the item's resolved
// content id.
func (c *Cache) ToggleShowDespiteFilter(ref entity.ItemRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	toggle(c.showDespiteFilter, c.contentIDLocked(ref))
}

// ShowDespiteContentWarning reports whether the user expanded the item's
// content warning.
func (c *Cache) ShowDespiteContentWarning(ref entity.ItemRef) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.showDespiteCW[c.contentIDLocked(ref)]
	return ok
}

// ToggleShowDespiteContentWarning flips the content-warning override for the
// item's resolved content id.
func (c *Cache) ToggleShowDespiteContentWarning(ref entity.ItemRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	toggle(c.showDespiteCW, c.contentIDLocked(ref))
}

func toggle(set map[string]struct{}, id string) {
	if _, ok := set[id]; ok {
		delete(set, id)
	} else {
		set[id] = struct{}{}
	}
}

// SetFollowRequestState records what the user did to a follow request from
// the given account.
func (c *Cache) SetFollowRequestState(accountID string, state FollowRequestState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.followRequests[accountID] = state
}

// FollowRequestState returns the recorded state for a follow request, or
// FollowRequestPending when nothing was recorded.
func (c *Cache) FollowRequestState(accountID string) FollowRequestState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.followRequests[accountID]
}
