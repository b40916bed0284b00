package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/carlmjohnson/requests"
	"github.com/charmbracelet/log"
)

// Client talks to the Coinbase v2 REST API. All calls are synchronous; list
// endpoints follow the pagination cursor until exhausted.
type Client struct {
	host    string
	version string
	auth    Authenticator
	http    *http.Client
	logger  *log.Logger
}

func NewClient(host, version string, auth Authenticator, httpClient *http.Client, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		host:    host,
		version: version,
		auth:    auth,
		http:    httpClient,
		logger:  logger,
	}
}

// Account is the subset of account fields the downloader needs to drive
// per-account fetches; the full payload is kept verbatim in Raw.
type Account struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`

	Raw json.RawMessage `json:"-"`
}

type page struct {
	Data       json.RawMessage `json:"data"`
	Pagination struct {
		NextURI string `json:"next_uri"`
	} `json:"pagination"`
}

type object struct {
	Data json.RawMessage `json:"data"`
}

// Accounts lists every account, following pagination to the end.
func (c *Client) Accounts(ctx context.Context) ([]Account, error) {
	items, err := c.paginate(ctx, "/"+c.version+"/accounts", nil)
	if err != nil {
		return nil, err
	}

	accounts := make([]Account, 0, len(items))
	for _, item := range items {
		var acct Account
		if err := json.Unmarshal(item, &acct); err != nil {
			return nil, fmt.Errorf("decoding account: %w", err)
		}
		acct.Raw = item
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// AccountInformation fetches the full record of one account.
func (c *Client) AccountInformation(ctx context.Context, accountID string) (json.RawMessage, error) {
	var obj object
	path := fmt.Sprintf("/%s/accounts/%s", c.version, accountID)
	if err := c.get(ctx, path, &obj); err != nil {
		return nil, err
	}
	return obj.Data, nil
}

// Transactions lists every transaction of an account in ascending order,
// fully expanded, following pagination to the end.
func (c *Client) Transactions(ctx context.Context, accountID string) ([]json.RawMessage, error) {
	params := url.Values{}
	params.Set("expand", "all")
	params.Set("order", "asc")
	return c.paginate(ctx, fmt.Sprintf("/%s/accounts/%s/transactions", c.version, accountID), params)
}

// Deposits lists every deposit of an account in ascending order.
func (c *Client) Deposits(ctx context.Context, accountID string) ([]json.RawMessage, error) {
	params := url.Values{}
	params.Set("order", "asc")
	return c.paginate(ctx, fmt.Sprintf("/%s/accounts/%s/deposits", c.version, accountID), params)
}

// Withdrawals lists every withdrawal of an account in ascending order.
func (c *Client) Withdrawals(ctx context.Context, accountID string) ([]json.RawMessage, error) {
	params := url.Values{}
	params.Set("order", "asc")
	return c.paginate(ctx, fmt.Sprintf("/%s/accounts/%s/withdrawals", c.version, accountID), params)
}

// paginate collects data items across pages by following next_uri until the
// server reports no further page. A transport failure on any page aborts the
// whole listing.
func (c *Client) paginate(ctx context.Context, path string, params url.Values) ([]json.RawMessage, error) {
	next := path
	if enc := params.Encode(); enc != "" {
		next += "?" + enc
	}

	var out []json.RawMessage
	for next != "" {
		var p page
		if err := c.get(ctx, next, &p); err != nil {
			return nil, err
		}

		var items []json.RawMessage
		if err := json.Unmarshal(p.Data, &items); err != nil {
			return nil, fmt.Errorf("decoding page data: %w", err)
		}
		out = append(out, items...)

		next = p.Pagination.NextURI
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, pathAndQuery string, dst any) error {
	// Requests are signed over the bare path; the query string is not part
	// of the signed uri claim.
	path, _, _ := strings.Cut(pathAndQuery, "?")
	header, err := c.auth.Headers(http.MethodGet, path)
	if err != nil {
		return fmt.Errorf("authenticating request: %w", err)
	}

	c.logger.Debug("GET", "path", pathAndQuery)

	builder := requests.URL("https://" + c.host + pathAndQuery).
		Client(c.http).
		ToJSON(dst)
	for key, values := range header {
		builder = builder.Header(key, values...)
	}

	if err := builder.Fetch(ctx); err != nil {
		return fmt.Errorf("GET %s: %w", pathAndQuery, err)
	}
	return nil
}
