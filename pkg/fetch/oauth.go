package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/carlmjohnson/requests"
)

const (
	oauthAuthURL  = "https://login.coinbase.com/oauth2/auth"
	oauthTokenURL = "https://login.coinbase.com/oauth2/token"
)

var oauthScopes = []string{
	"wallet:accounts:read",
	"wallet:transactions:read",
	"wallet:deposits:read",
	"wallet:withdrawals:read",
}

// OAuth authenticates with a bearer token obtained through the
// authorization-code flow. Exchange must be called before any API request.
type OAuth struct {
	clientID     string
	clientSecret string
	redirectURI  string
	http         *http.Client

	accessToken string
}

func NewOAuth(clientID, clientSecret, redirectURI string, httpClient *http.Client) *OAuth {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OAuth{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		http:         httpClient,
	}
}

// AuthCodeURL builds the URL the user must visit to authorize access.
func (a *OAuth) AuthCodeURL(state string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", a.clientID)
	q.Set("redirect_uri", a.redirectURI)
	q.Set("state", state)
	for _, scope := range oauthScopes {
		q.Add("scope", scope)
	}
	return oauthAuthURL + "?" + q.Encode()
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// Exchange trades the authorization code for an access token.
func (a *OAuth) Exchange(ctx context.Context, code string) error {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", a.clientID)
	form.Set("client_secret", a.clientSecret)
	form.Set("redirect_uri", a.redirectURI)

	var tok tokenResponse
	err := requests.URL(oauthTokenURL).
		Client(a.http).
		BodyForm(form).
		ToJSON(&tok).
		Fetch(ctx)
	if err != nil {
		return fmt.Errorf("exchanging authorization code: %w", err)
	}
	if tok.AccessToken == "" {
		return errors.New("token response has no access_token")
	}
	a.accessToken = tok.AccessToken
	return nil
}

func (a *OAuth) Headers(string, string) (http.Header, error) {
	if a.accessToken == "" {
		return nil, errors.New("oauth: no access token, run the authorization flow first")
	}
	h := http.Header{}
	h.Set("Authorization", "Bearer "+a.accessToken)
	return h, nil
}
