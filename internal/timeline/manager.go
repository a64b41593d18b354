// Package timeline persists the currently-visible feed window per user:
// full status bodies go to a per-user object store, the ordered list of
// references to a separate order file. Writes are serialized and coalesced,
// so rapid successive refreshes cost at most one write for the latest
// snapshot.
package timeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pders01/feedcache/internal/config"
	"github.com/pders01/feedcache/internal/debuglog"
	"github.com/pders01/feedcache/internal/entity"
)

// StatusSource resolves a status id to the latest known full representation.
// Implemented by identity.Cache; nil is allowed and means nothing resolves.
type StatusSource interface {
	Status(id string) *entity.Status
}

type request struct {
	userID string
	items  []entity.FeedItem
}

// Manager owns every per-user cache file under the configured root. All
// object-store handles are opened and closed here; no other component
// addresses the files directly.
type Manager struct {
	root         string
	storeTimeout time.Duration
	source       StatusSource

	mu       sync.Mutex
	idle     *sync.Cond
	pending  []request
	inFlight bool

	storeMu    sync.Mutex
	activeUser string
	active     *userStore

	// onWrite is invoked at the start of every drained write. Test hook.
	onWrite func(userID string)
}

// NewManager creates a manager rooted at cfg.Cache.Root. The root directory
// is created lazily on first write.
func NewManager(cfg *config.Config, source StatusSource) *Manager {
	m := &Manager{
		root:         cfg.Cache.Root,
		storeTimeout: cfg.Cache.StoreTimeout,
		source:       source,
	}
	m.idle = sync.NewCond(&m.mu)
	return m
}

// CacheTimeline queues the given snapshot for durable persistence and
// returns immediately. A still-pending snapshot for the same user is
// discarded first: only the most recent snapshot per user is ever written,
// and a coalesced-away snapshot is guaranteed never to reach disk.
func (m *Manager) CacheTimeline(items []entity.FeedItem, userID string) {
	snapshot := make([]entity.FeedItem, len(items))
	copy(snapshot, items)

	m.mu.Lock()
	for i, req := range m.pending {
		if req.userID == userID {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			break
		}
	}
	m.pending = append(m.pending, request{userID: userID, items: snapshot})
	m.mu.Unlock()

	go m.drain()
}

// drain pops pending requests one at a time. At most one write is active
// globally at any instant; concurrent drains observing inFlight return and
// let the active one pick up the queue.
func (m *Manager) drain() {
	for {
		m.mu.Lock()
		if m.inFlight {
			m.mu.Unlock()
			return
		}
		if len(m.pending) == 0 {
			m.idle.Broadcast()
			m.mu.Unlock()
			return
		}
		req := m.pending[0]
		m.pending = m.pending[1:]
		m.inFlight = true
		m.mu.Unlock()

		m.write(req)

		m.mu.Lock()
		m.inFlight = false
		m.mu.Unlock()
	}
}

// Flush blocks until the pending queue is empty and no write is in flight.
func (m *Manager) Flush() {
	m.mu.Lock()
	for m.inFlight || len(m.pending) > 0 {
		m.idle.Wait()
	}
	m.mu.Unlock()
}

// write persists one snapshot: status bodies to the object store first, then
// the ordered reference list to the order file. A crash between the two
// steps is tolerated; orphaned bodies are harmless and an order entry whose
// body is missing reads back as a miss.
func (m *Manager) write(req request) {
	if m.onWrite != nil {
		m.onWrite(req.userID)
	}

	records := make([]entity.CachedPostRecord, 0, len(req.items))
	var bodies []*entity.Status
	for _, item := range req.items {
		// Loading indicators are transient and notifications are
		// deliberately not cached between sessions.
		if item.Kind != entity.ItemStatus {
			continue
		}
		records = append(records, entity.CachedPostRecord{ID: item.ID, Display: item.Display})
		if m.source != nil {
			if st := m.source.Status(item.ID); st != nil {
				bodies = append(bodies, st)
			}
		}
	}

	if err := m.ensureRoot(); err != nil {
		debuglog.Warnf("timeline: creating cache root: %v", err)
		return
	}

	if len(bodies) > 0 {
		store, err := m.store(req.userID)
		if err != nil {
			debuglog.Warnf("timeline: opening store for %s: %v", req.userID, err)
		} else if err := store.PutStatuses(bodies); err != nil {
			debuglog.Warnf("timeline: writing bodies for %s: %v", req.userID, err)
		}
	}

	data, err := encodeOrder(records)
	if err != nil {
		debuglog.Errorf("timeline: encoding order for %s: %v", req.userID, err)
		return
	}
	if err := writeFileAtomic(m.orderPath(req.userID), data); err != nil {
		debuglog.Warnf("timeline: writing order file for %s: %v", req.userID, err)
	}
}

// CachedTimeline returns placeholder items for the user's persisted feed
// window, in stored order. Any read or decode failure is a cache miss and
// yields nil; the caller re-fetches from the network either way.
func (m *Manager) CachedTimeline(userID string) []entity.FeedItem {
	data, err := os.ReadFile(m.orderPath(userID))
	if err != nil {
		return nil
	}
	records, err := decodeOrder(data)
	if err != nil {
		debuglog.Debugf("timeline: decoding order file for %s: %v", userID, err)
		return nil
	}
	items := make([]entity.FeedItem, 0, len(records))
	for _, rec := range records {
		items = append(items, entity.FeedItem{
			Kind:    entity.ItemStatus,
			ID:      rec.ID,
			Display: rec.Display,
		})
	}
	return items
}

// CachedPost returns the stored full body for a post id, or nil on any miss
// or failure.
func (m *Manager) CachedPost(userID, id string) *entity.Status {
	if !m.storeExists(userID) {
		return nil
	}
	store, err := m.store(userID)
	if err != nil {
		debuglog.Debugf("timeline: opening store for %s: %v", userID, err)
		return nil
	}
	st, err := store.Status(id)
	if err != nil {
		debuglog.Debugf("timeline: reading post %s for %s: %v", id, userID, err)
		return nil
	}
	return st
}

// CachedPosts returns the stored bodies for the given ids, skipping misses.
func (m *Manager) CachedPosts(userID string, ids []string) []*entity.Status {
	if !m.storeExists(userID) {
		return nil
	}
	store, err := m.store(userID)
	if err != nil {
		debuglog.Debugf("timeline: opening store for %s: %v", userID, err)
		return nil
	}
	statuses, err := store.Statuses(ids)
	if err != nil {
		debuglog.Debugf("timeline: reading posts for %s: %v", userID, err)
		return nil
	}
	return statuses
}

// RemoveUser removes every per-user cache: timeline order, timeline objects,
// notification preferences, and read markers. Each step is independent and
// best-effort so one failure cannot strand the others' data on the device;
// failures are logged and aggregated. Any open handle for the user is
// dropped first so a later re-add does not reuse stale state.
//
// Every new per-user cache added to this package must be added here too.
func (m *Manager) RemoveUser(userID string) error {
	m.storeMu.Lock()
	if m.activeUser == userID && m.active != nil {
		if err := m.active.Close(); err != nil {
			debuglog.Warnf("timeline: closing store for %s: %v", userID, err)
		}
		m.active = nil
		m.activeUser = ""
	}
	m.storeMu.Unlock()

	var errs []error
	for _, path := range []string{
		m.orderPath(userID),
		m.postsPath(userID),
		m.prefsPath(userID),
		m.markersPath(userID),
	} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			debuglog.Warnf("timeline: removing %s: %v", path, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ClearCachedTimeline deletes the order file and empties the object store
// without touching the user's other caches. Used when invalidating just the
// feed, not the whole account.
func (m *Manager) ClearCachedTimeline(userID string) error {
	var errs []error
	if err := os.Remove(m.orderPath(userID)); err != nil && !os.IsNotExist(err) {
		errs = append(errs, err)
	}
	if m.storeExists(userID) {
		store, err := m.store(userID)
		if err != nil {
			errs = append(errs, err)
		} else if err := store.Empty(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close waits for pending writes and releases the open store handle.
func (m *Manager) Close() error {
	m.Flush()

	m.storeMu.Lock()
	defer m.storeMu.Unlock()
	if m.active == nil {
		return nil
	}
	err := m.active.Close()
	m.active = nil
	m.activeUser = ""
	return err
}

// store returns the open handle for the user, opening it lazily. At most one
// per-user handle is open at a time; switching users closes the previous one
// first.
func (m *Manager) store(userID string) (*userStore, error) {
	m.storeMu.Lock()
	defer m.storeMu.Unlock()

	if m.activeUser == userID && m.active != nil {
		return m.active, nil
	}
	if m.active != nil {
		if err := m.active.Close(); err != nil {
			debuglog.Warnf("timeline: closing store for %s: %v", m.activeUser, err)
		}
		m.active = nil
		m.activeUser = ""
	}

	store, err := openUserStore(m.postsPath(userID), m.storeTimeout)
	if err != nil {
		return nil, err
	}
	m.active = store
	m.activeUser = userID
	return store, nil
}

// storeExists reports whether the user's object store file is on disk,
// without creating it as an open would.
func (m *Manager) storeExists(userID string) bool {
	m.storeMu.Lock()
	open := m.activeUser == userID && m.active != nil
	m.storeMu.Unlock()
	if open {
		return true
	}
	_, err := os.Stat(m.postsPath(userID))
	return err == nil
}

func (m *Manager) ensureRoot() error {
	return os.MkdirAll(m.root, 0o755)
}

func (m *Manager) orderPath(userID string) string {
	return filepath.Join(m.root, "Timeline-order-"+sanitizeUserID(userID))
}

func (m *Manager) postsPath(userID string) string {
	return filepath.Join(m.root, "Timeline-posts-"+sanitizeUserID(userID)+".db")
}

func (m *Manager) prefsPath(userID string) string {
	return filepath.Join(m.root, "Timeline-notification-prefs-"+sanitizeUserID(userID)+".json")
}

func (m *Manager) markersPath(userID string) string {
	return filepath.Join(m.root, "Timeline-read-markers-"+sanitizeUserID(userID)+".json")
}

// sanitizeUserID makes a globally-unique user id safe as a single path
// component. Ids may contain host names and separators; everything outside a
// conservative set maps to '_'.
func sanitizeUserID(userID string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_' || r == '@':
			return r
		default:
			return '_'
		}
	}, userID)
}
