package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/finance_dashboard_app/internal/apperrors"
	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	portsproviders "github.com/SscSPs/finance_dashboard_app/internal/core/ports/providers"
	portsrepo "github.com/SscSPs/finance_dashboard_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_dashboard_app/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard_app/internal/utils"
)

type linkService struct {
	BaseService
	itemRepo        portsrepo.PlaidItemRepository
	accounts        portssvc.AccountWriterSvc
	plaid           portsproviders.Linker
	teller          portsproviders.AccountLister
	defaultProducts []string
}

// LinkServiceOption is a functional option for configuring the link service
type LinkServiceOption func(*linkService)

// WithPlaidLinker enables the Plaid Link flow.
func WithPlaidLinker(linker portsproviders.Linker) LinkServiceOption {
	return func(s *linkService) {
		s.plaid = linker
	}
}

// WithTellerLister enables Teller enrollments.
func WithTellerLister(lister portsproviders.AccountLister) LinkServiceOption {
	return func(s *linkService) {
		s.teller = lister
	}
}

// WithDefaultProducts sets the Plaid products requested when the caller names none.
func WithDefaultProducts(products []string) LinkServiceOption {
	return func(s *linkService) {
		if len(products) > 0 {
			s.defaultProducts = products
		}
	}
}

// WithLinkClock overrides the time source.
func WithLinkClock(clock func() time.Time) LinkServiceOption {
	return func(s *linkService) {
		s.clock = clock
	}
}

// NewLinkService creates a new link service
func NewLinkService(itemRepo portsrepo.PlaidItemRepository, accounts portssvc.AccountWriterSvc, options ...LinkServiceOption) portssvc.LinkSvcFacade {
	svc := &linkService{
		itemRepo:        itemRepo,
		accounts:        accounts,
		defaultProducts: []string{"transactions"},
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.LinkSvcFacade = (*linkService)(nil)

func (s *linkService) CreateLinkToken(ctx context.Context, userID string, products []string) (string, error) {
	if s.plaid == nil {
		return "", fmt.Errorf("%w: plaid is not configured", apperrors.ErrProviderUnavailable)
	}
	products = cleanProducts(products)
	if len(products) == 0 {
		products = s.defaultProducts
	}

	token, err := s.plaid.CreateLinkToken(ctx, userID, products)
	if err != nil {
		s.LogError(ctx, err, "Failed to create link token", slog.String("user_id", userID))
		return "", fmt.Errorf("failed to create link token: %w", err)
	}
	return token, nil
}

// SavePublicToken exchanges the token, stores the item and then its accounts.
func (s *linkService) SavePublicToken(ctx context.Context, userID string, publicToken string) (*domain.LinkResult, error) {
	if s.plaid == nil {
		return nil, fmt.Errorf("%w: plaid is not configured", apperrors.ErrProviderUnavailable)
	}
	if strings.TrimSpace(publicToken) == "" {
		return nil, fmt.Errorf("%w: public token is required", apperrors.ErrValidation)
	}

	linked, err := s.plaid.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		s.LogError(ctx, err, "Public token exchange failed")
		return nil, fmt.Errorf("failed to exchange public token: %w", err)
	}
	info, err := s.plaid.GetItem(ctx, linked.AccessToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch item", slog.String("item_id", linked.ItemID))
		return nil, fmt.Errorf("failed to fetch item %s: %w", linked.ItemID, err)
	}

	now := s.Now()
	item, err := s.itemRepo.SaveItem(ctx, domain.PlaidItem{
		ItemID:          linked.ItemID,
		UserID:          userID,
		AccessToken:     linked.AccessToken,
		InstitutionName: info.InstitutionName,
		Products:        info.Products,
		Status:          info.Status,
		AuditFields:     domain.AuditFields{CreatedAt: now, UpdatedAt: now},
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to save item", slog.String("item_id", linked.ItemID))
		return nil, fmt.Errorf("failed to save item %s: %w", linked.ItemID, err)
	}
	s.LogInfo(ctx, "Linked institution",
		slog.String("institution", item.InstitutionName),
		slog.String("item_id", item.ItemID),
		slog.String("access_token", utils.MaskSecret(linked.AccessToken)))

	records, err := s.plaid.ListAccounts(ctx, linked.AccessToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list item accounts", slog.String("item_id", item.ItemID))
		return nil, fmt.Errorf("failed to list accounts of item %s: %w", item.ItemID, err)
	}
	for i := range records {
		records[i].ItemID = item.ItemID
		records[i].AccessToken = linked.AccessToken
		if records[i].InstitutionName == "" {
			records[i].InstitutionName = item.InstitutionName
		}
	}

	summary, err := s.accounts.UpsertAccounts(ctx, userID, domain.ProviderPlaid, records)
	if err != nil {
		return nil, err
	}
	return &domain.LinkResult{
		ItemID:          item.ItemID,
		InstitutionName: item.InstitutionName,
		Accounts:        *summary,
	}, nil
}

func (s *linkService) EnrollTeller(ctx context.Context, userID string, accessToken string, enrollmentID string) (*domain.LinkResult, error) {
	if s.teller == nil {
		return nil, fmt.Errorf("%w: teller is not configured", apperrors.ErrProviderUnavailable)
	}
	if strings.TrimSpace(accessToken) == "" {
		return nil, fmt.Errorf("%w: access token is required", apperrors.ErrValidation)
	}

	records, err := s.teller.ListAccounts(ctx, accessToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list teller accounts", slog.String("enrollment_id", enrollmentID))
		return nil, fmt.Errorf("failed to list teller accounts: %w", err)
	}
	institution := ""
	for i := range records {
		records[i].AccessToken = accessToken
		if records[i].EnrollmentID == "" {
			records[i].EnrollmentID = enrollmentID
		}
		if institution == "" {
			institution = records[i].InstitutionName
		}
	}

	summary, err := s.accounts.UpsertAccounts(ctx, userID, domain.ProviderTeller, records)
	if err != nil {
		return nil, err
	}
	return &domain.LinkResult{InstitutionName: institution, Accounts: *summary}, nil
}

func cleanProducts(products []string) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
