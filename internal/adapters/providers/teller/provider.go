// Package teller adapts the Teller API to the provider ports. Requests are
// authenticated with the enrollment access token as the basic auth username and
// a client certificate configured on the retrying transport.
package teller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/finance_dashboard_app/internal/adapters/httpretry"
	"github.com/SscSPs/finance_dashboard_app/internal/apperrors"
	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	"github.com/SscSPs/finance_dashboard_app/internal/core/ports/providers"
	"github.com/SscSPs/finance_dashboard_app/internal/middleware"
)

const DefaultBaseURL = "https://api.teller.io"

// Provider talks to the Teller API.
type Provider struct {
	http    *httpretry.Client
	baseURL string
}

var (
	_ providers.AccountProvider = (*Provider)(nil)
	_ providers.AccountLister   = (*Provider)(nil)
)

// NewProvider creates a Teller provider. The client should carry the Teller
// client certificate (see httpretry.WithClientCertificate).
func NewProvider(client *httpretry.Client, baseURL string) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Provider{http: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (p *Provider) Name() domain.LinkProvider {
	return domain.ProviderTeller
}

// StatusError is a non-200 response from Teller.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("teller returned status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusTooManyRequests {
		return apperrors.ErrRateLimited
	}
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return apperrors.ErrUnauthorized
	}
	return apperrors.ErrProviderUnavailable
}

func (p *Provider) get(ctx context.Context, path, accessToken string) ([]byte, error) {
	resp, err := p.http.Get(ctx, p.baseURL+path, &httpretry.Auth{Username: accessToken})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read teller response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 512)}
	}
	return body, nil
}

// FetchBalance reads /accounts/{id}/balances. Error statuses and unknown shapes
// produce a stale reading.
func (p *Provider) FetchBalance(ctx context.Context, account domain.Account) (domain.BalanceReading, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	body, err := p.get(ctx, "/accounts/"+account.AccountID+"/balances", account.AccessToken)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			return domain.StaleBalance(se.Error()), nil
		}
		return domain.BalanceReading{}, err
	}

	payload, err := ParseBalancePayload(body)
	if err != nil {
		logger.Warn("Unexpected balance response format", slog.String("account_id", account.AccountID), slog.String("error", err.Error()))
		return domain.StaleBalance(err.Error()), nil
	}
	value, err := payload.Balance(account.Type)
	if err != nil {
		logger.Warn("Balance response missing value", slog.String("account_id", account.AccountID), slog.String("error", err.Error()))
		return domain.StaleBalance(err.Error()), nil
	}
	return domain.FreshBalance(value), nil
}

// FetchTransactions reads /accounts/{id}/transactions.
func (p *Provider) FetchTransactions(ctx context.Context, account domain.Account) (domain.TransactionBatch, error) {
	body, err := p.get(ctx, "/accounts/"+account.AccountID+"/transactions", account.AccessToken)
	if err != nil {
		return domain.TransactionBatch{}, err
	}
	txns, malformed, err := parseTransactions(body, account.AccountID)
	if err != nil {
		return domain.TransactionBatch{}, err
	}
	if malformed > 0 {
		middleware.GetLoggerFromCtx(ctx).Warn("Skipped malformed transactions",
			slog.String("account_id", account.AccountID), slog.Int("count", malformed))
	}
	return domain.TransactionBatch{Transactions: txns, Raw: body}, nil
}

type account struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Type         string         `json:"type"`
	Subtype      string         `json:"subtype"`
	Status       string         `json:"status"`
	EnrollmentID string         `json:"enrollment_id"`
	Institution  *struct {
		Name string `json:"name"`
	} `json:"institution"`
	Links map[string]any `json:"links"`
}

// ListAccounts reads /accounts for an enrollment.
func (p *Provider) ListAccounts(ctx context.Context, accessToken string) ([]domain.AccountRecord, error) {
	body, err := p.get(ctx, "/accounts", accessToken)
	if err != nil {
		return nil, err
	}
	var accounts []account
	if err := json.Unmarshal(body, &accounts); err != nil {
		return nil, fmt.Errorf("invalid teller accounts response: %w", err)
	}

	records := make([]domain.AccountRecord, 0, len(accounts))
	for _, a := range accounts {
		rec := domain.AccountRecord{
			ID:           a.ID,
			Name:         a.Name,
			Type:         a.Type,
			Subtype:      a.Subtype,
			Status:       a.Status,
			AccessToken:  accessToken,
			EnrollmentID: a.EnrollmentID,
			RefreshLinks: map[string]string{},
		}
		if a.Institution != nil {
			rec.InstitutionName = a.Institution.Name
		}
		for k, v := range a.Links {
			if s, ok := v.(string); ok {
				rec.RefreshLinks[k] = s
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
