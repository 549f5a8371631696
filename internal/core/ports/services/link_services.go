package services

import (
	"context"

	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
)

// LinkSvcFacade defines how new provider credentials are linked
type LinkSvcFacade interface {
	// CreateLinkToken returns a Plaid Link token for the user.
	CreateLinkToken(ctx context.Context, userID string, products []string) (string, error)

	// SavePublicToken exchanges a Plaid public token, stores the item and its accounts.
	SavePublicToken(ctx context.Context, userID string, publicToken string) (*domain.LinkResult, error)

	// EnrollTeller stores the accounts reachable with a Teller enrollment.
	EnrollTeller(ctx context.Context, userID string, accessToken string, enrollmentID string) (*domain.LinkResult, error)
}
