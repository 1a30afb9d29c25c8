package facebook

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// adAccountStatusActive is the Graph account_status code for an active
// advertising account.
const adAccountStatusActive = 1

// instagramFetchLimit bounds how many per-page Instagram profile lookups
// run at once.
const instagramFetchLimit = 4

// IdentityFetchError marks a failed /me lookup. Without an identity there is
// nothing to link, so the whole flow aborts.
type IdentityFetchError struct {
	Err error
}

func (e *IdentityFetchError) Error() string {
	return fmt.Sprintf("identity fetch failed: %v", e.Err)
}

func (e *IdentityFetchError) Unwrap() error {
	return e.Err
}

// DiscoverAssets fetches everything linkable for the token. The identity
// lookup is load-bearing and aborts the pass; business, ad-account, page and
// Instagram lookups are best-effort and degrade to empty collections, so a
// merchant can connect even with no business-managed ad account yet.
func (c *Client) DiscoverAssets(ctx context.Context, accessToken string) (*DiscoveredAssets, error) {
	identity, err := c.FetchIdentity(ctx, accessToken)
	if err != nil {
		return nil, &IdentityFetchError{Err: err}
	}
	log.Printf("📘 FACEBOOK: authenticated user %s (ID: %s)", identity.Name, identity.ID)

	assets := &DiscoveredAssets{Identity: *identity}

	if businessID, adAccounts, err := c.fetchAdAccounts(ctx, accessToken); err != nil {
		log.Printf("📘 FACEBOOK: ad account discovery degraded, continuing without ad accounts: %v", err)
	} else {
		assets.BusinessID = businessID
		assets.AdAccounts = adAccounts
	}
	assets.DefaultAdAccountID = DefaultAdAccountID(assets.AdAccounts)

	if pages, err := c.fetchPages(ctx, accessToken); err != nil {
		log.Printf("📘 FACEBOOK: page discovery degraded, continuing without pages: %v", err)
	} else {
		assets.Pages = pages
	}

	assets.InstagramAccounts = c.fetchInstagramAccounts(ctx, assets.Pages)

	log.Printf("📘 FACEBOOK: discovery complete for user %s: %d ad accounts, %d pages, %d Instagram accounts",
		identity.ID, len(assets.AdAccounts), len(assets.Pages), len(assets.InstagramAccounts))
	return assets, nil
}

// DefaultAdAccountID picks the first active ad account, falling back to the
// first discovered, or empty when none were found.
func DefaultAdAccountID(accounts []AdAccount) string {
	for _, account := range accounts {
		if account.Status == adAccountStatusActive {
			return account.ID
		}
	}
	if len(accounts) > 0 {
		return accounts[0].ID
	}
	return ""
}

// FetchIdentity resolves the user behind the access token.
func (c *Client) FetchIdentity(ctx context.Context, accessToken string) (*Identity, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)
	params.Set("fields", "id,name,email")

	var identity Identity
	if err := c.get(ctx, "me", "/me", params, &identity); err != nil {
		return nil, err
	}
	if identity.ID == "" {
		return nil, fmt.Errorf("incomplete user data from Facebook")
	}
	return &identity, nil
}

// fetchAdAccounts lists ad accounts through the user's first business, or
// directly off the user when no business exists.
func (c *Client) fetchAdAccounts(ctx context.Context, accessToken string) (string, []AdAccount, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)
	params.Set("fields", "id,name")

	var businesses struct {
		Data []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := c.get(ctx, "me_businesses", "/me/businesses", params, &businesses); err != nil {
		return "", nil, fmt.Errorf("error listing businesses: %w", err)
	}

	if len(businesses.Data) == 0 {
		log.Printf("📘 FACEBOOK: no business found, listing the user's direct ad accounts")
		accounts, err := c.listAdAccounts(ctx, "me_adaccounts", "/me/adaccounts", accessToken)
		return "", accounts, err
	}

	businessID := businesses.Data[0].ID
	log.Printf("📘 FACEBOOK: using business %s (%s)", businesses.Data[0].Name, businessID)
	accounts, err := c.listAdAccounts(ctx, "owned_ad_accounts", "/"+businessID+"/owned_ad_accounts", accessToken)
	if err != nil {
		return "", nil, err
	}
	return businessID, accounts, nil
}

func (c *Client) listAdAccounts(ctx context.Context, endpoint, path, accessToken string) ([]AdAccount, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)
	params.Set("fields", "id,name,account_status,currency,timezone_name")

	var result struct {
		Data []AdAccount `json:"data"`
	}
	if err := c.get(ctx, endpoint, path, params, &result); err != nil {
		return nil, fmt.Errorf("error listing ad accounts: %w", err)
	}
	return result.Data, nil
}

// fetchPages lists the pages the user manages, including each page's own
// access token and linked Instagram business account id.
func (c *Client) fetchPages(ctx context.Context, accessToken string) ([]Page, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)
	params.Set("fields", "id,name,access_token,category,instagram_business_account{id}")

	var result struct {
		Data []struct {
			ID          string `json:"id"`
			Name        string `json:"name"`
			AccessToken string `json:"access_token"`
			Category    string `json:"category"`
			Instagram   struct {
				ID string `json:"id"`
			} `json:"instagram_business_account"`
		} `json:"data"`
	}
	if err := c.get(ctx, "me_accounts", "/me/accounts", params, &result); err != nil {
		return nil, fmt.Errorf("error listing pages: %w", err)
	}

	pages := make([]Page, 0, len(result.Data))
	for _, p := range result.Data {
		pages = append(pages, Page{
			ID:                  p.ID,
			Name:                p.Name,
			AccessToken:         p.AccessToken,
			Category:            p.Category,
			InstagramBusinessID: p.Instagram.ID,
		})
	}
	return pages, nil
}

// fetchInstagramAccounts resolves the Instagram business profile for every
// page that links one, using the page's own token. Lookups run concurrently
// with a bounded group; a failed lookup skips only that page.
func (c *Client) fetchInstagramAccounts(ctx context.Context, pages []Page) []InstagramAccount {
	var (
		mu       sync.Mutex
		accounts []InstagramAccount
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(instagramFetchLimit)

	for _, page := range pages {
		if page.InstagramBusinessID == "" {
			continue
		}
		page := page
		group.Go(func() error {
			account, err := c.fetchInstagramProfile(groupCtx, page)
			if err != nil {
				log.Printf("📘 FACEBOOK: skipping Instagram account for page %s: %v", page.ID, err)
				return nil
			}
			mu.Lock()
			accounts = append(accounts, *account)
			mu.Unlock()
			return nil
		})
	}
	group.Wait()

	// Stable order for deterministic persistence.
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].PageID < accounts[j].PageID })
	return accounts
}

func (c *Client) fetchInstagramProfile(ctx context.Context, page Page) (*InstagramAccount, error) {
	params := url.Values{}
	params.Set("access_token", page.AccessToken)
	params.Set("fields", "id,name,username,profile_picture_url")

	var profile struct {
		ID                string `json:"id"`
		Name              string `json:"name"`
		Username          string `json:"username"`
		ProfilePictureURL string `json:"profile_picture_url"`
	}
	if err := c.get(ctx, "instagram_profile", "/"+page.InstagramBusinessID, params, &profile); err != nil {
		return nil, err
	}

	return &InstagramAccount{
		ID:                profile.ID,
		PageID:            page.ID,
		Name:              profile.Name,
		Username:          profile.Username,
		ProfilePictureURL: profile.ProfilePictureURL,
	}, nil
}
