package browser

import (
	"github.com/playwright-community/playwright-go"
)

// SessionRecord is the last known-good authenticated state: the cookie set to
// replay and the host the site routed us to after login (e.g.
// https://www84.hattrick.org). Either both fields are present or the record is
// empty; the store never writes one without the other.
type SessionRecord struct {
	Cookies  []playwright.Cookie `json:"cookies"`
	AuthBase string              `json:"auth_base"`
}

// IsEmpty reports whether the record carries a usable session.
func (r SessionRecord) IsEmpty() bool {
	return len(r.Cookies) == 0 || r.AuthBase == ""
}

// Link is an outbound hyperlink with its trimmed visible text.
type Link struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// Table is a rendered table as rows of trimmed cell text.
type Table struct {
	Rows [][]string `json:"rows"`
}

// PageSnapshot is the normalized view of the page after authentication and the
// optional interaction. Produced fresh on every call, never persisted.
type PageSnapshot struct {
	FinalURL string      `json:"url"`
	BodyText string      `json:"text"`
	Links    []Link      `json:"links"`
	Tables   []Table     `json:"tables"`
	Error    *Diagnostic `json:"error,omitempty"`
}

// InteractiveElement is a discovered DOM control, keyed by its computed
// best-effort selector. Ephemeral, produced only by InspectionQuery.
type InteractiveElement struct {
	Selector string         `json:"selector"`
	Tag      string         `json:"tag"`
	Type     string         `json:"type"`
	Text     string         `json:"text"`
	Value    string         `json:"value"`
	Name     string         `json:"name,omitempty"`
	ID       string         `json:"id,omitempty"`
	Href     string         `json:"href,omitempty"`
	Checked  *bool          `json:"checked,omitempty"`
	Visible  bool           `json:"visible"`
	Disabled bool           `json:"disabled"`
	Category string         `json:"category"`
	Options  []SelectOption `json:"options,omitempty"`
}

// SelectOption is one entry of a dropdown's option list.
type SelectOption struct {
	Value    string `json:"value"`
	Text     string `json:"text"`
	Selected bool   `json:"selected"`
}

// Element categories reported by inspection.
const (
	CategoryButton     = "button"
	CategoryInput      = "input"
	CategoryDropdown   = "dropdown"
	CategoryCheckbox   = "checkbox"
	CategoryActionLink = "action-link"
)

// Bounded limits for snapshots and step results. Page content can be
// arbitrarily large; only a representative slice is useful to a caller.
const (
	MaxLinks        = 60
	MaxTables       = 10
	MaxLinkText     = 80
	MaxEvalResult   = 500
	MaxStepError    = 200
	DefaultSettleMs = 1500
)
