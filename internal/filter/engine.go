// Package filter compiles user filter rules into per-context match tables
// and evaluates rendered text against them.
package filter

import (
	"strings"
	"time"

	"github.com/blevesearch/segment"
)

// Context is a named surface filters can be scoped to.
type Context string

const (
	ContextHome          Context = "home"
	ContextNotifications Context = "notifications"
	ContextPublic        Context = "public"
	ContextThread        Context = "thread"
	ContextAccount       Context = "account"
)

// Action is what a rule asks for when it matches. Anything the client does
// not recognize degrades to ActionWarn at build time, never to a dropped
// rule.
type Action string

const (
	ActionHide Action = "hide"
	ActionWarn Action = "warn"
)

// Keyword is one matchable string of a rule. WholeWord keywords only match
// complete words, so short keywords do not fire inside unrelated ones.
type Keyword struct {
	Text      string
	WholeWord bool
}

// Rule is a user-defined filter rule as delivered by the rules-fetch layer.
// A nil ExpiresAt means the rule never expires.
type Rule struct {
	ID        string
	Title     string
	Contexts  []Context
	Action    Action
	ExpiresAt *time.Time
	Keywords  []Keyword
}

// ResultAction is the verdict kind. The zero value means the content passed
// every rule.
type ResultAction uint8

const (
	NotFiltered ResultAction = iota
	Warn
	Hide
)

// Result is a filtering verdict. RuleTitle names the matching rule for
// user-facing attribution; it is empty for NotFiltered.
type Result struct {
	Action    ResultAction
	RuleTitle string
}

type match struct {
	text string
	rule string
}

type contextMatches struct {
	warnAny  []match
	hideAny  []match
	hideWord map[string]string
	warnWord map[string]string
}

// Matcher answers "for this text, in this context, what happens?". Built
// once per refresh cycle; evaluation is synchronous and never fails.
type Matcher struct {
	contexts map[Context]*contextMatches
}

// Build compiles a rule list into a matcher. It returns nil when the list is
// empty, so callers can distinguish "no filters configured" from "filters
// configured but none matched". Rules past their expiry are excluded here,
// not at evaluation time.
func Build(rules []Rule) *Matcher {
	return buildAt(rules, time.Now())
}

func buildAt(rules []Rule, now time.Time) *Matcher {
	if len(rules) == 0 {
		return nil
	}
	m := &Matcher{contexts: make(map[Context]*contextMatches)}
	for _, r := range rules {
		if r.ExpiresAt != nil && !r.ExpiresAt.After(now) {
			continue
		}
		hide := r.Action == ActionHide
		for _, ctx := range r.Contexts {
			cm := m.contexts[ctx]
			if cm == nil {
				cm = &contextMatches{
					hideWord: make(map[string]string),
					warnWord: make(map[string]string),
				}
				m.contexts[ctx] = cm
			}
			for _, kw := range r.Keywords {
				text := strings.ToLower(strings.TrimSpace(kw.Text))
				if text == "" {
					continue
				}
				switch {
				case kw.WholeWord && hide:
					cm.hideWord[text] = r.Title
				case kw.WholeWord:
					cm.warnWord[text] = r.Title
				case hide:
					cm.hideAny = append(cm.hideAny, match{text: text, rule: r.Title})
				default:
					cm.warnAny = append(cm.warnAny, match{text: text, rule: r.Title})
				}
			}
		}
	}
	return m
}

// Apply evaluates content against the rules scoped to ctx. Matching is
// case-insensitive. Substring buckets are scanned before whole-word buckets:
// they are cheaper and catch multi-word phrases that tokenization would
// split. Within the substring pass warn is scanned before hide; within the
// token pass the first matching token wins, hide checked before warn per
// token.
func (m *Matcher) Apply(content string, ctx Context) Result {
	if m == nil {
		return Result{}
	}
	cm := m.contexts[ctx]
	if cm == nil {
		return Result{}
	}
	lower := strings.ToLower(content)
	for _, w := range cm.warnAny {
		if strings.Contains(lower, w.text) {
			return Result{Action: Warn, RuleTitle: w.rule}
		}
	}
	for _, h := range cm.hideAny {
		if strings.Contains(lower, h.text) {
			return Result{Action: Hide, RuleTitle: h.rule}
		}
	}
	if len(cm.hideWord) == 0 && len(cm.warnWord) == 0 {
		return Result{}
	}
	seg := segment.NewWordSegmenterDirect([]byte(lower))
	for seg.Segment() {
		if seg.Type() == segment.None {
			continue
		}
		tok := string(seg.Bytes())
		if rule, ok := cm.hideWord[tok]; ok {
			return Result{Action: Hide, RuleTitle: rule}
		}
		if rule, ok := cm.warnWord[tok]; ok {
			return Result{Action: Warn, RuleTitle: rule}
		}
	}
	return Result{}
}
