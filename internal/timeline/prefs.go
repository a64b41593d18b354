package timeline

import (
	"encoding/json"
	"os"
	"time"
)

// NotificationPreferences is the per-user notification display configuration
// cached alongside the timeline so the notifications screen renders with the
// right toggles before the network responds.
type NotificationPreferences struct {
	ShowMentions  bool `json:"show_mentions"`
	ShowFollows   bool `json:"show_follows"`
	ShowBoosts    bool `json:"show_boosts"`
	ShowFavorites bool `json:"show_favorites"`
	ShowPolls     bool `json:"show_polls"`
}

// ReadMarker records the last item the user read in a named timeline.
type ReadMarker struct {
	LastReadID string    `json:"last_read_id"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SetNotificationPreferences persists the per-user notification preferences.
func (m *Manager) SetNotificationPreferences(userID string, prefs NotificationPreferences) error {
	if err := m.ensureRoot(); err != nil {
		return err
	}
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	return writeFileAtomic(m.prefsPath(userID), data)
}

// NotificationPreferences returns the cached preferences for the user, or
// nil when nothing is cached.
func (m *Manager) NotificationPreferences(userID string) *NotificationPreferences {
	data, err := os.ReadFile(m.prefsPath(userID))
	if err != nil {
		return nil
	}
	var prefs NotificationPreferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil
	}
	return &prefs
}

// SetReadMarker records the last read item id for a named timeline.
func (m *Manager) SetReadMarker(userID, timelineName, lastReadID string) error {
	if err := m.ensureRoot(); err != nil {
		return err
	}
	markers := m.readMarkers(userID)
	if markers == nil {
		markers = make(map[string]ReadMarker)
	}
	markers[timelineName] = ReadMarker{LastReadID: lastReadID, UpdatedAt: time.Now()}

	data, err := json.Marshal(markers)
	if err != nil {
		return err
	}
	return writeFileAtomic(m.markersPath(userID), data)
}

// ReadMarker returns the cached read marker for a named timeline, or nil.
func (m *Manager) ReadMarker(userID, timelineName string) *ReadMarker {
	markers := m.readMarkers(userID)
	if markers == nil {
		return nil
	}
	marker, ok := markers[timelineName]
	if !ok {
		return nil
	}
	return &marker
}

func (m *Manager) readMarkers(userID string) map[string]ReadMarker {
	data, err := os.ReadFile(m.markersPath(userID))
	if err != nil {
		return nil
	}
	var markers map[string]ReadMarker
	if err := json.Unmarshal(data, &markers); err != nil {
		return nil
	}
	return markers
}
