package entity

import "time"

// AccountSummary is the partial account representation embedded in statuses
// and notifications: just enough to render an author line.
type AccountSummary struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Acct        string `json:"acct"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// Account is the full profile representation fetched from an account page.
type Account struct {
	AccountSummary
	Note           string    `json:"note"`
	HeaderURL      string    `json:"header_url"`
	FollowersCount int       `json:"followers_count"`
	FollowingCount int       `json:"following_count"`
	StatusesCount  int       `json:"statuses_count"`
	Locked         bool      `json:"locked"`
	CreatedAt      time.Time `json:"created_at"`
}

// Status is the authoritative representation of a post. A boost carries no
// text of its own; Reblog points at the post it re-shares.
type Status struct {
	ID          string         `json:"id"`
	URI         string         `json:"uri"`
	Account     AccountSummary `json:"account"`
	Content     string         `json:"content"`
	SpoilerText string         `json:"spoiler_text"`
	Sensitive   bool           `json:"sensitive"`
	CreatedAt   time.Time      `json:"created_at"`
	Reblog      *Status        `json:"reblog,omitempty"`
}

// Notification is a single event addressed to the user. StatusID is empty for
// kinds that have no attached post (follow, follow request).
type Notification struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	CreatedAt time.Time      `json:"created_at"`
	Account   AccountSummary `json:"account"`
	StatusID  string         `json:"status_id,omitempty"`
}

// NotificationGroup aggregates notifications of the same type about the same
// status, as delivered by grouped-notification endpoints.
type NotificationGroup struct {
	ID             string   `json:"id"`
	Type           string   `json:"type"`
	StatusID       string   `json:"status_id,omitempty"`
	SampleAccounts []string `json:"sample_accounts"`
	Count          int      `json:"count"`
}

// Relationship describes how the user relates to another account.
type Relationship struct {
	AccountID  string `json:"account_id"`
	Following  bool   `json:"following"`
	FollowedBy bool   `json:"followed_by"`
	Requested  bool   `json:"requested"`
	Blocking   bool   `json:"blocking"`
	Muting     bool   `json:"muting"`
}

// FilterableStatus returns the status whose text content the given status
// presents: a boost resolves to the boosted post, anything else to itself.
func FilterableStatus(st *Status) *Status {
	if st == nil {
		return nil
	}
	if st.Reblog != nil {
		return st.Reblog
	}
	return st
}

// ResolveContentID returns the id of the post whose content the given status
// presents. Every override and filter lookup keys on this id, so toggling
// visibility on a boost and on its original are the same operation.
func ResolveContentID(st *Status) string {
	fs := FilterableStatus(st)
	if fs == nil {
		return ""
	}
	return fs.ID
}
