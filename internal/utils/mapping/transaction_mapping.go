package mapping

import (
	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	"github.com/SscSPs/finance_dashboard_app/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID: d.TransactionID,
		AccountID:     d.AccountID,
		Amount:        d.Amount,
		Date:          d.Date,
		Description:   d.Description,
		Category:      d.Category,
		MerchantName:  d.MerchantName,
		MerchantType:  d.MerchantType,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID: m.TransactionID,
		AccountID:     m.AccountID,
		Amount:        m.Amount,
		Date:          m.Date,
		Description:   m.Description,
		Category:      m.Category,
		MerchantName:  m.MerchantName,
		MerchantType:  m.MerchantType,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelPlaidItem converts a domain PlaidItem to a model PlaidItem
func ToModelPlaidItem(d domain.PlaidItem) models.PlaidItem {
	return models.PlaidItem{
		ItemID:               d.ItemID,
		UserID:               d.UserID,
		AccessToken:          d.AccessToken,
		InstitutionName:      d.InstitutionName,
		Product:              d.ProductString(),
		Status:               d.Status,
		LastSuccessfulUpdate: d.LastSuccessfulUpdate,
		AuditFields:          ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPlaidItem converts a model PlaidItem to a domain PlaidItem
func ToDomainPlaidItem(m models.PlaidItem) domain.PlaidItem {
	return domain.PlaidItem{
		ItemID:               m.ItemID,
		UserID:               m.UserID,
		AccessToken:          m.AccessToken,
		InstitutionName:      m.InstitutionName,
		Products:             domain.ParseProducts(m.Product),
		Status:               m.Status,
		LastSuccessfulUpdate: m.LastSuccessfulUpdate,
		AuditFields:          ToDomainAuditFields(m.AuditFields),
	}
}
