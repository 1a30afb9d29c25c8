package facebook

// Identity is the authenticated Facebook user behind the access token.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AdAccount is an advertising account discovered for the user.
type AdAccount struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Status   int    `json:"account_status"`
	Currency string `json:"currency"`
	Timezone string `json:"timezone_name"`
}

// Page is a Facebook page the user manages. The page carries its own
// access token, distinct from the user token.
type Page struct {
	ID                  string
	Name                string
	AccessToken         string
	Category            string
	InstagramBusinessID string
}

// InstagramAccount is the Instagram business account linked to a page.
type InstagramAccount struct {
	ID                string
	PageID            string
	Name              string
	Username          string
	ProfilePictureURL string
}

// DiscoveredAssets is everything one discovery pass found for a token.
// Identity is always populated; the rest is best-effort and may be empty.
type DiscoveredAssets struct {
	Identity           Identity
	BusinessID         string
	AdAccounts         []AdAccount
	DefaultAdAccountID string
	Pages              []Page
	InstagramAccounts  []InstagramAccount
}
