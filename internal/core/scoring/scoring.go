// Package scoring turns a contract draft into a 0-100 completeness score,
// a per-category breakdown and a checklist of missing critical fields.
// Score is pure and total: any draft, including nil, produces a result.
package scoring

import "github.com/kirillkom/contract-intelligence/internal/core/domain"

const (
	MaxFinancial = 30.0
	MaxParty     = 25.0
	MaxPayment   = 20.0
	MaxSLA       = 15.0
	MaxContact   = 10.0
)

// Score computes the weighted completeness score for a draft.
// The missing-field checklist is evaluated independently of the numeric
// breakdown: an entry appears whenever its field is absent, regardless of
// what the surrounding category scored.
func Score(draft *domain.ContractDraft) (float64, domain.ScoreBreakdown, []string) {
	if draft == nil {
		draft = &domain.ContractDraft{}
	}

	breakdown := domain.ScoreBreakdown{
		FinancialCompleteness: scoreFinancial(draft.FinancialDetails),
		PartyIdentification:   scoreParties(draft.Customer, draft.Vendor),
		PaymentTerms:          scorePayment(draft.PaymentStructure),
		SLADefinition:         scoreServiceLevel(draft.ServiceLevelTerms),
		ContactInformation:    scoreContact(draft.AccountInfo),
	}

	return breakdown.Total(), breakdown, missingFields(draft)
}

// scoreFinancial: line items up to 15 (averaged per item), total value 10,
// currency 3, tax info 2.
func scoreFinancial(fin *domain.FinancialDetails) float64 {
	if fin == nil {
		return 0
	}

	score := 0.0
	if len(fin.LineItems) > 0 {
		itemScore := 0.0
		for _, item := range fin.LineItems {
			if item.Description != "" {
				itemScore += 5
			}
			if item.Quantity != nil && item.UnitPrice != nil {
				itemScore += 5
			}
			if item.TotalPrice != nil {
				itemScore += 5
			}
		}
		score += capAt(itemScore/float64(len(fin.LineItems)), 15)
	}

	if fin.TotalValue != nil {
		score += 10
	}
	if fin.Currency != "" {
		score += 3
	}
	if fin.TaxInfo != "" || fin.TaxAmount != nil {
		score += 2
	}

	return capAt(score, MaxFinancial)
}

// scoreParties: customer and vendor each contribute up to 12.5
// (name 4, legal entity 3, address 2.5, signatories 3).
func scoreParties(customer, vendor *domain.PartyInfo) float64 {
	return capAt(scoreParty(customer)+scoreParty(vendor), MaxParty)
}

func scoreParty(party *domain.PartyInfo) float64 {
	if party == nil {
		return 0
	}
	score := 0.0
	if party.Name != "" {
		score += 4
	}
	if party.LegalEntity != "" {
		score += 3
	}
	if party.Address != "" {
		score += 2.5
	}
	if len(party.Signatories) > 0 {
		score += 3
	}
	return score
}

// scorePayment: terms 8, schedule 7 (2 per entry) or plain due dates 5,
// methods 3, banking details 2.
func scorePayment(payment *domain.PaymentStructure) float64 {
	if payment == nil {
		return 0
	}

	score := 0.0
	if payment.PaymentTerms != "" {
		score += 8
	}
	if len(payment.Schedules) > 0 {
		score += capAt(float64(len(payment.Schedules))*2, 7)
	} else if len(payment.DueDates) > 0 {
		score += 5
	}
	if len(payment.Methods) > 0 {
		score += 3
	}
	if payment.BankingDetails != "" {
		score += 2
	}

	return capAt(score, MaxPayment)
}

// scoreServiceLevel: metrics 6 (2 each), support terms 4, penalties 3,
// response/resolution times 2.
func scoreServiceLevel(sla *domain.ServiceLevelTerms) float64 {
	if sla == nil {
		return 0
	}

	score := 0.0
	if len(sla.PerformanceMetrics) > 0 {
		score += capAt(float64(len(sla.PerformanceMetrics))*2, 6)
	}
	if sla.SupportTerms != "" {
		score += 4
	}
	if len(sla.PenaltyClauses) > 0 {
		score += 3
	}
	if sla.ResponseTime != "" || sla.ResolutionTime != "" {
		score += 2
	}

	return capAt(score, MaxSLA)
}

// scoreContact: billing contact 4, technical contact 3, general contact 3,
// split evenly between email and phone.
func scoreContact(account *domain.AccountInfo) float64 {
	if account == nil {
		return 0
	}

	score := 0.0
	if billing := account.BillingContact; billing != nil {
		if billing.Email != "" {
			score += 2
		}
		if billing.Phone != "" {
			score += 2
		}
	}
	if technical := account.TechnicalContact; technical != nil {
		if technical.Email != "" {
			score += 1.5
		}
		if technical.Phone != "" {
			score += 1.5
		}
	}
	if contact := account.ContactInfo; contact != nil {
		if contact.Email != "" {
			score += 1.5
		}
		if contact.Phone != "" {
			score += 1.5
		}
	}

	return capAt(score, MaxContact)
}

// missingFields evaluates a fixed checklist of critical gaps. Each condition
// is checked against the draft itself, so an absent section also reports the
// fields it would have contained.
func missingFields(draft *domain.ContractDraft) []string {
	missing := make([]string, 0, 12)

	fin := draft.FinancialDetails
	if fin == nil {
		missing = append(missing, "Financial details section")
	}
	if fin == nil || fin.TotalValue == nil {
		missing = append(missing, "Total contract value")
	}
	if fin == nil || fin.Currency == "" {
		missing = append(missing, "Currency")
	}
	if fin == nil || len(fin.LineItems) == 0 {
		missing = append(missing, "Line items/services description")
	}

	if draft.Customer == nil || draft.Customer.Name == "" {
		missing = append(missing, "Customer name")
	}
	if draft.Vendor == nil || draft.Vendor.Name == "" {
		missing = append(missing, "Vendor name")
	}

	payment := draft.PaymentStructure
	if payment == nil {
		missing = append(missing, "Payment structure section")
	}
	if payment == nil || payment.PaymentTerms == "" {
		missing = append(missing, "Payment terms (e.g., Net 30)")
	}
	if payment == nil || (len(payment.Schedules) == 0 && len(payment.DueDates) == 0) {
		missing = append(missing, "Payment schedule or due dates")
	}

	account := draft.AccountInfo
	if account == nil {
		missing = append(missing, "Account/contact information")
	}
	if account == nil || account.BillingContact == nil {
		missing = append(missing, "Billing contact information")
	}

	if draft.ServiceLevelTerms == nil {
		missing = append(missing, "Service Level Agreement (SLA)")
	}

	return missing
}

func capAt(score, max float64) float64 {
	if score > max {
		return max
	}
	return score
}
