package models

// Placeholder values used instead of omitting a field.
const (
	NotAvailable = "N/A"

	MonetizationLikelyEnabled  = "Likely Enabled"
	MonetizationLikelyDisabled = "Likely Disabled"

	ShadowbanUndetermined = "Cannot be determined"
)

// ChannelRecord is the response for GET /api/analyze. Every field is always
// serialized; missing values are represented by NotAvailable (or an empty
// list / string for tags and thumbnail).
type ChannelRecord struct {
	Monetization Monetization `json:"monetization"`
	Tags         []string     `json:"tags"`
	ChannelID    string       `json:"channelId"`
	Thumbnail    string       `json:"thumbnail"`
	Earnings     Earnings     `json:"earnings"`
	Shadowban    Shadowban    `json:"shadowban"`
	ChannelInfo  ChannelInfo  `json:"channelInfo"`
}

// Monetization is the heuristic monetization signal.
type Monetization struct {
	Status  string `json:"status"`
	Checked bool   `json:"checked"`
}

// Earnings cannot be derived by inspecting a public page; both bounds are
// always NotAvailable.
type Earnings struct {
	Low  string `json:"low"`
	High string `json:"high"`
}

// Shadowban cannot be derived by inspecting a public page.
type Shadowban struct {
	Status  string `json:"status"`
	Checked bool   `json:"checked"`
}

// ChannelInfo holds the display statistics as rendered on the page.
type ChannelInfo struct {
	Name        string `json:"name"`
	Subscribers string `json:"subscribers"`
	TotalViews  string `json:"totalViews"`
	VideoCount  string `json:"videoCount"`
}

// UnsupportedEarnings returns the fixed earnings marker.
func UnsupportedEarnings() Earnings {
	return Earnings{Low: NotAvailable, High: NotAvailable}
}

// UnsupportedShadowban returns the fixed shadowban marker.
func UnsupportedShadowban() Shadowban {
	return Shadowban{Status: ShadowbanUndetermined, Checked: false}
}
