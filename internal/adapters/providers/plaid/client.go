package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/finance_dashboard_app/internal/adapters/httpretry"
)

// Plaid API endpoints.
const (
	sandboxBaseURL     = "https://sandbox.plaid.com"
	developmentBaseURL = "https://development.plaid.com"
	productionBaseURL  = "https://production.plaid.com"

	apiVersion = "2020-09-14"

	// maxPageSize is the largest count /transactions/get accepts.
	maxPageSize = 500
)

// ClientConfig configures the Plaid client.
type ClientConfig struct {
	// Environment is "sandbox", "development", or "production"
	Environment string
	ClientID    string
	// Secret is never logged.
	Secret string
	// BaseURL overrides the environment endpoint, for tests.
	BaseURL string
	// HTTP is the retrying transport. A default one is created when nil.
	HTTP *httpretry.Client
}

// Client is a minimal HTTP client for the Plaid endpoints this service uses.
type Client struct {
	http     *httpretry.Client
	baseURL  string
	clientID string
	secret   string
}

// NewClient creates a new Plaid client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.ClientID == "" || config.Secret == "" {
		return nil, ErrNotConfigured
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		switch strings.ToLower(config.Environment) {
		case "production":
			baseURL = productionBaseURL
		case "development":
			baseURL = developmentBaseURL
		default:
			baseURL = sandboxBaseURL
		}
	}

	hc := config.HTTP
	if hc == nil {
		hc = httpretry.New()
	}

	return &Client{
		http:     hc,
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: config.ClientID,
		secret:   config.Secret,
	}, nil
}

// CreateLinkToken creates a Link token for initializing Plaid Link.
func (c *Client) CreateLinkToken(ctx context.Context, userID string, products []string) (*LinkTokenCreateResponse, error) {
	body := map[string]any{
		"client_name":   "My Finance Dashboard",
		"language":      "en",
		"country_codes": []string{"US"},
		"user":          LinkTokenUser{ClientUserID: userID},
		"products":      products,
	}
	resp, _, err := doPost[LinkTokenCreateResponse](ctx, c, "/link/token/create", body)
	return resp, err
}

// ExchangePublicToken exchanges a public token for an access token.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*ItemPublicTokenExchangeResponse, error) {
	body := map[string]any{"public_token": publicToken}
	resp, _, err := doPost[ItemPublicTokenExchangeResponse](ctx, c, "/item/public_token/exchange", body)
	return resp, err
}

// GetItem fetches the item metadata behind an access token.
func (c *Client) GetItem(ctx context.Context, accessToken string) (*ItemGetResponse, error) {
	body := map[string]any{"access_token": accessToken}
	resp, _, err := doPost[ItemGetResponse](ctx, c, "/item/get", body)
	return resp, err
}

// GetAccounts fetches accounts and their cached balances.
func (c *Client) GetAccounts(ctx context.Context, accessToken string) (*AccountsGetResponse, error) {
	body := map[string]any{"access_token": accessToken}
	resp, _, err := doPost[AccountsGetResponse](ctx, c, "/accounts/get", body)
	return resp, err
}

// GetTransactions fetches every transaction in [startDate, endDate], following
// offsets until total_transactions is reached. The raw page payloads are returned
// as a JSON array.
func (c *Client) GetTransactions(ctx context.Context, accessToken string, startDate, endDate time.Time, opts *TransactionsGetOptions) (*TransactionsGetResponse, []byte, error) {
	var (
		merged *TransactionsGetResponse
		pages  []json.RawMessage
	)
	options := TransactionsGetOptions{Count: maxPageSize}
	if opts != nil {
		options.AccountIDs = opts.AccountIDs
		if opts.Count > 0 {
			options.Count = opts.Count
		}
	}

	for {
		body := map[string]any{
			"access_token": accessToken,
			"start_date":   FormatDate(startDate),
			"end_date":     FormatDate(endDate),
			"options":      options,
		}
		page, raw, err := doPost[TransactionsGetResponse](ctx, c, "/transactions/get", body)
		if err != nil {
			return nil, nil, err
		}
		pages = append(pages, json.RawMessage(raw))
		if merged == nil {
			merged = page
		} else {
			merged.Transactions = append(merged.Transactions, page.Transactions...)
		}
		if len(page.Transactions) == 0 || len(merged.Transactions) >= page.TotalTransactions {
			break
		}
		options.Offset = len(merged.Transactions)
	}

	raw, err := json.Marshal(pages)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode raw transaction pages: %w", err)
	}
	return merged, raw, nil
}

// GetHoldings fetches investment holdings and the securities they refer to.
func (c *Client) GetHoldings(ctx context.Context, accessToken string) (*HoldingsGetResponse, error) {
	body := map[string]any{"access_token": accessToken}
	resp, _, err := doPost[HoldingsGetResponse](ctx, c, "/investments/holdings/get", body)
	return resp, err
}

// doPost performs a POST with a JSON body and decodes the response. The body is
// rebuilt on every retry attempt.
func doPost[Resp any](ctx context.Context, c *Client, path string, reqBody map[string]any) (*Resp, []byte, error) {
	reqBody["client_id"] = c.clientID
	reqBody["secret"] = c.secret

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.http.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Plaid-Version", apiVersion)
		return req, nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("plaid %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("plaid %s: failed to read response: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, parseError(resp.StatusCode, raw)
	}

	var result Resp
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, nil, fmt.Errorf("plaid %s: failed to decode response: %w", path, err)
	}
	return &result, raw, nil
}

// parseError parses an error response from Plaid.
func parseError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.ErrorType != "" {
		apiErr.ErrorType = errResp.ErrorType
		apiErr.ErrorCode = errResp.ErrorCode
		apiErr.ErrorMessage = errResp.ErrorMessage
		apiErr.RequestID = errResp.RequestID
	} else {
		apiErr.ErrorMessage = string(body)
	}
	return apiErr
}
