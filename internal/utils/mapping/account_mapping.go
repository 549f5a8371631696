package mapping

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	"github.com/SscSPs/finance_dashboard_app/internal/models"
)

// ToModelAccount converts a domain Account to a model Account.
// The access token is copied as is; sealing is the repository's job.
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:       d.AccountID,
		UserID:          d.UserID,
		ItemID:          sql.NullString{String: d.ItemID, Valid: d.ItemID != ""},
		Name:            d.Name,
		Type:            d.Type,
		Subtype:         d.Subtype,
		Status:          d.Status,
		InstitutionName: d.InstitutionName,
		Balance:         d.Balance,
		LastRefreshed:   d.LastRefreshed,
		LinkProvider:    string(d.LinkProvider),
		AccessToken:     d.AccessToken,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:       m.AccountID,
		UserID:          m.UserID,
		ItemID:          m.ItemID.String,
		Name:            m.Name,
		Type:            m.Type,
		Subtype:         m.Subtype,
		Status:          m.Status,
		InstitutionName: m.InstitutionName,
		Balance:         m.Balance,
		LastRefreshed:   m.LastRefreshed,
		LinkProvider:    domain.LinkProvider(m.LinkProvider),
		AccessToken:     m.AccessToken,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	if ms == nil {
		return nil
	}
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}

// ToModelAccountDetails converts domain AccountDetails, encoding the refresh links as JSON.
func ToModelAccountDetails(d domain.AccountDetails) (models.AccountDetails, error) {
	links := d.RefreshLinks
	if links == nil {
		links = map[string]string{}
	}
	raw, err := json.Marshal(links)
	if err != nil {
		return models.AccountDetails{}, fmt.Errorf("failed to encode refresh links for account %s: %w", d.AccountID, err)
	}
	return models.AccountDetails{
		AccountID:    d.AccountID,
		EnrollmentID: d.EnrollmentID,
		RefreshLinks: raw,
	}, nil
}

// ToDomainAccountDetails converts model AccountDetails. Undecodable links become an empty map.
func ToDomainAccountDetails(m models.AccountDetails) domain.AccountDetails {
	links := map[string]string{}
	if len(m.RefreshLinks) > 0 {
		_ = json.Unmarshal(m.RefreshLinks, &links)
	}
	return domain.AccountDetails{
		AccountID:    m.AccountID,
		EnrollmentID: m.EnrollmentID,
		RefreshLinks: links,
	}
}

// ToModelAccountHistory converts a domain AccountHistory to a model AccountHistory
func ToModelAccountHistory(d domain.AccountHistory) models.AccountHistory {
	return models.AccountHistory{
		AccountID:    d.AccountID,
		SnapshotDate: domain.Today(d.SnapshotDate),
		Balance:      d.Balance,
		CreatedAt:    d.CreatedAt,
	}
}

// ToDomainAccountHistory converts a model AccountHistory to a domain AccountHistory
func ToDomainAccountHistory(m models.AccountHistory) domain.AccountHistory {
	return domain.AccountHistory{
		AccountID:    m.AccountID,
		SnapshotDate: m.SnapshotDate,
		Balance:      m.Balance,
		CreatedAt:    m.CreatedAt,
	}
}

// ToModelAccountGroup converts a domain AccountGroup to a model AccountGroup
func ToModelAccountGroup(d domain.AccountGroup) models.AccountGroup {
	ids := d.AccountIDs
	if ids == nil {
		ids = []string{}
	}
	return models.AccountGroup{
		GroupID:    d.GroupID,
		UserID:     d.UserID,
		Name:       d.Name,
		AccountIDs: ids,
		CreatedAt:  d.CreatedAt,
	}
}

// ToDomainAccountGroup converts a model AccountGroup to a domain AccountGroup
func ToDomainAccountGroup(m models.AccountGroup) domain.AccountGroup {
	return domain.AccountGroup{
		GroupID:    m.GroupID,
		UserID:     m.UserID,
		Name:       m.Name,
		AccountIDs: m.AccountIDs,
		CreatedAt:  m.CreatedAt,
	}
}
