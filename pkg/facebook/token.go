package facebook

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// TokenExchangeError marks a failed authorization-code exchange. OAuth codes
// are single-use, so callers must not retry the exchange.
type TokenExchangeError struct {
	Err error
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed: %v", e.Err)
}

func (e *TokenExchangeError) Unwrap() error {
	return e.Err
}

// DialogURL builds the OAuth dialog URL the merchant's popup navigates to.
func (c *Client) DialogURL(state string) string {
	params := url.Values{}
	params.Set("client_id", c.appID)
	params.Set("redirect_uri", c.redirectURI)
	params.Set("state", state)
	params.Set("response_type", "code")
	params.Set("scope", "ads_management,ads_read,business_management,pages_show_list,pages_read_engagement,instagram_basic")
	return "https://www.facebook.com/v19.0/dialog/oauth?" + params.Encode()
}

// ExchangeCode trades the authorization code for a user access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("client_id", c.appID)
	form.Set("client_secret", c.appSecret)
	form.Set("redirect_uri", c.redirectURI)
	form.Set("code", code)

	var result struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := c.postForm(ctx, "oauth_access_token", "/oauth/access_token", form, &result); err != nil {
		return "", &TokenExchangeError{Err: err}
	}

	if result.AccessToken == "" {
		return "", &TokenExchangeError{Err: errors.New("no access token received from Facebook")}
	}
	return result.AccessToken, nil
}
