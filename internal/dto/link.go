package dto

import "github.com/SscSPs/finance_dashboard_app/internal/core/domain"

// LinkTokenResponse carries the token that opens Plaid Link.
type LinkTokenResponse struct {
	LinkToken string `json:"link_token"`
}

// SavePublicTokenRequest carries the token returned by Plaid Link.
type SavePublicTokenRequest struct {
	PublicToken string `json:"public_token" binding:"required"`
}

// EnrollTellerRequest carries a completed Teller Connect enrollment.
type EnrollTellerRequest struct {
	AccessToken  string `json:"access_token" binding:"required"`
	EnrollmentID string `json:"enrollment_id"`
}

// LinkResponse reports what a link stored.
type LinkResponse struct {
	Status          string `json:"status"`
	ItemID          string `json:"item_id,omitempty"`
	InstitutionName string `json:"institution_name,omitempty"`
	Inserted        int    `json:"accounts_inserted"`
	Updated         int    `json:"accounts_updated"`
	Skipped         int    `json:"accounts_skipped"`
}

// ToLinkResponse converts a domain link result
func ToLinkResponse(r *domain.LinkResult) LinkResponse {
	return LinkResponse{
		Status:          "success",
		ItemID:          r.ItemID,
		InstitutionName: r.InstitutionName,
		Inserted:        r.Accounts.Inserted,
		Updated:         r.Accounts.Updated,
		Skipped:         r.Accounts.Skipped,
	}
}
