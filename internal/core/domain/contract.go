package domain

import "time"

type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// ContractRecord is the persisted lifecycle entity for one submitted document.
// It is created once at submission and mutated only by the processing pipeline.
type ContractRecord struct {
	ID          string `json:"contract_id"`
	Filename    string `json:"filename"`
	FileSize    int64  `json:"file_size"`
	FileType    string `json:"file_type"`
	StoragePath string `json:"-"`

	Status   ProcessingStatus `json:"status"`
	Progress int              `json:"progress"`
	Attempt  int              `json:"attempt"`

	SubmittedAt           time.Time  `json:"submitted_at"`
	ProcessingStartedAt   *time.Time `json:"processing_started_at,omitempty"`
	ProcessingEndedAt     *time.Time `json:"processing_ended_at,omitempty"`
	ProcessingTimeSeconds *float64   `json:"processing_time_seconds,omitempty"`

	CompletenessScore float64         `json:"completeness_score"`
	ScoreBreakdown    *ScoreBreakdown `json:"score_breakdown,omitempty"`
	MissingFields     []string        `json:"missing_fields"`
	ErrorMessage      string          `json:"error_message,omitempty"`

	ContractDraft
}

// ScoreBreakdown holds the five weighted category scores.
// Category maximums: financial 30, party 25, payment 20, sla 15, contact 10.
type ScoreBreakdown struct {
	FinancialCompleteness float64 `json:"financial_completeness"`
	PartyIdentification   float64 `json:"party_identification"`
	PaymentTerms          float64 `json:"payment_terms"`
	SLADefinition         float64 `json:"sla_definition"`
	ContactInformation    float64 `json:"contact_information"`
}

func (b ScoreBreakdown) Total() float64 {
	return b.FinancialCompleteness +
		b.PartyIdentification +
		b.PaymentTerms +
		b.SLADefinition +
		b.ContactInformation
}

// ContractDraft is the structured, possibly-partial output of field extraction.
// Every field is optional: absence means "not found in the document".
type ContractDraft struct {
	ContractTitle string         `json:"contract_title,omitempty"`
	ContractType  string         `json:"contract_type,omitempty"`
	Description   string         `json:"description,omitempty"`
	ContractDates *ContractDates `json:"contract_dates,omitempty"`

	Customer *PartyInfo `json:"customer,omitempty"`
	Vendor   *PartyInfo `json:"vendor,omitempty"`

	AccountInfo           *AccountInfo           `json:"account_info,omitempty"`
	FinancialDetails      *FinancialDetails      `json:"financial_details,omitempty"`
	PaymentStructure      *PaymentStructure      `json:"payment_structure,omitempty"`
	RevenueClassification *RevenueClassification `json:"revenue_classification,omitempty"`
	ServiceLevelTerms     *ServiceLevelTerms     `json:"sla,omitempty"`
}

type ContractDates struct {
	EffectiveDate  string `json:"effective_date,omitempty"`
	ExpirationDate string `json:"expiration_date,omitempty"`
	SignatureDate  string `json:"signature_date,omitempty"`
	NoticeDate     string `json:"notice_date,omitempty"`
}

type Signatory struct {
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
	Title string `json:"title,omitempty"`
}

type PartyInfo struct {
	Name                string      `json:"name,omitempty"`
	LegalEntity         string      `json:"legal_entity,omitempty"`
	RegistrationDetails string      `json:"registration_details,omitempty"`
	Signatories         []Signatory `json:"signatories,omitempty"`
	Address             string      `json:"address,omitempty"`
	ConfidenceScore     float64     `json:"confidence_score,omitempty"`
}

type ContactInfo struct {
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	Department string `json:"department,omitempty"`
}

type AccountInfo struct {
	BillingDetails   string       `json:"billing_details,omitempty"`
	AccountNumbers   []string     `json:"account_numbers,omitempty"`
	ContactInfo      *ContactInfo `json:"contact_info,omitempty"`
	BillingContact   *ContactInfo `json:"billing_contact,omitempty"`
	TechnicalContact *ContactInfo `json:"technical_contact,omitempty"`
	ConfidenceScore  float64      `json:"confidence_score,omitempty"`
}

type LineItem struct {
	Description string   `json:"description,omitempty"`
	Quantity    *float64 `json:"quantity,omitempty"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
	TotalPrice  *float64 `json:"total_price,omitempty"`
	Unit        string   `json:"unit,omitempty"`
}

type FinancialDetails struct {
	LineItems       []LineItem `json:"line_items,omitempty"`
	TotalValue      *float64   `json:"total_value,omitempty"`
	Currency        string     `json:"currency,omitempty"`
	TaxInfo         string     `json:"tax_info,omitempty"`
	TaxAmount       *float64   `json:"tax_amount,omitempty"`
	Subtotal        *float64   `json:"subtotal,omitempty"`
	ConfidenceScore float64    `json:"confidence_score,omitempty"`
}

type PaymentSchedule struct {
	DueDate     string   `json:"due_date,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Description string   `json:"description,omitempty"`
}

type PaymentStructure struct {
	PaymentTerms       string            `json:"payment_terms,omitempty"`
	Schedules          []PaymentSchedule `json:"schedules,omitempty"`
	DueDates           []string          `json:"due_dates,omitempty"`
	Methods            []string          `json:"methods,omitempty"`
	BankingDetails     string            `json:"banking_details,omitempty"`
	LatePaymentPenalty string            `json:"late_payment_penalty,omitempty"`
	ConfidenceScore    float64           `json:"confidence_score,omitempty"`
}

type RevenueClassification struct {
	RecurringPayment    bool    `json:"recurring_payment,omitempty"`
	OneTimePayment      bool    `json:"one_time_payment,omitempty"`
	SubscriptionModel   string  `json:"subscription_model,omitempty"`
	BillingCycle        string  `json:"billing_cycle,omitempty"`
	RenewalTerms        string  `json:"renewal_terms,omitempty"`
	AutoRenewal         bool    `json:"auto_renewal,omitempty"`
	RenewalNoticePeriod string  `json:"renewal_notice_period,omitempty"`
	ConfidenceScore     float64 `json:"confidence_score,omitempty"`
}

type PerformanceMetric struct {
	Name        string `json:"name,omitempty"`
	Target      string `json:"target,omitempty"`
	Measurement string `json:"measurement,omitempty"`
}

type ServiceLevelTerms struct {
	PerformanceMetrics []PerformanceMetric `json:"performance_metrics,omitempty"`
	PenaltyClauses     []string            `json:"penalty_clauses,omitempty"`
	SupportTerms       string              `json:"support_terms,omitempty"`
	UptimeGuarantee    string              `json:"uptime_guarantee,omitempty"`
	ResponseTime       string              `json:"response_time,omitempty"`
	ResolutionTime     string              `json:"resolution_time,omitempty"`
	ConfidenceScore    float64             `json:"confidence_score,omitempty"`
}

// Submission is the unit of work dispatched from the API to the worker.
type Submission struct {
	ContractID  string `json:"contract_id"`
	StoragePath string `json:"storage_path"`
}

// ProcessingResult carries everything the pipeline persists on a completed run.
type ProcessingResult struct {
	Draft             *ContractDraft
	CompletenessScore float64
	ScoreBreakdown    ScoreBreakdown
	MissingFields     []string
	EndedAt           time.Time
	Seconds           float64
}

// ContractSummary is the listing projection of a record.
type ContractSummary struct {
	ID                string           `json:"contract_id"`
	Filename          string           `json:"filename"`
	Status            ProcessingStatus `json:"status"`
	SubmittedAt       time.Time        `json:"submitted_at"`
	CompletenessScore float64          `json:"completeness_score"`
	TotalValue        *float64         `json:"total_value,omitempty"`
	Currency          string           `json:"currency,omitempty"`
	CustomerName      string           `json:"customer_name,omitempty"`
	VendorName        string           `json:"vendor_name,omitempty"`
	ContractType      string           `json:"contract_type,omitempty"`
}

// ContractFilter narrows and pages the contract listing.
type ContractFilter struct {
	Status   ProcessingStatus
	MinScore *float64
	MaxScore *float64
	Page     int
	PageSize int
}

func (f ContractFilter) Normalize() ContractFilter {
	out := f
	if out.Page < 1 {
		out.Page = 1
	}
	if out.PageSize < 1 {
		out.PageSize = 20
	}
	if out.PageSize > 100 {
		out.PageSize = 100
	}
	return out
}
