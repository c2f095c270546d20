package openrouter

import "fmt"

const systemPrompt = "You are a contract analysis engine. " +
	"You read raw contract text and return structured data as a single JSON object. " +
	"Never invent values that are not present in the text. " +
	"Omit fields you cannot find instead of guessing."

const draftShape = `{
  "contract_title": "string",
  "contract_type": "string",
  "description": "string",
  "contract_dates": {"effective_date": "YYYY-MM-DD", "expiration_date": "YYYY-MM-DD", "signature_date": "YYYY-MM-DD", "notice_date": "YYYY-MM-DD"},
  "customer": {"name": "string", "legal_entity": "string", "registration_details": "string", "signatories": [{"name": "string", "role": "string", "title": "string"}], "address": "string"},
  "vendor": {"name": "string", "legal_entity": "string", "registration_details": "string", "signatories": [{"name": "string", "role": "string", "title": "string"}], "address": "string"},
  "account_info": {
    "billing_details": "string",
    "account_numbers": ["string"],
    "contact_info": {"email": "string", "phone": "string", "address": "string", "department": "string"},
    "billing_contact": {"email": "string", "phone": "string"},
    "technical_contact": {"email": "string", "phone": "string"}
  },
  "financial_details": {
    "line_items": [{"description": "string", "quantity": 0, "unit_price": 0, "total_price": 0, "unit": "string"}],
    "total_value": 0,
    "currency": "string",
    "tax_info": "string",
    "tax_amount": 0,
    "subtotal": 0
  },
  "payment_structure": {
    "payment_terms": "string",
    "schedules": [{"due_date": "YYYY-MM-DD", "amount": 0, "description": "string"}],
    "due_dates": ["string"],
    "methods": ["string"],
    "banking_details": "string",
    "late_payment_penalty": "string"
  },
  "revenue_classification": {"recurring_payment": true, "one_time_payment": false, "subscription_model": "string", "billing_cycle": "string", "renewal_terms": "string", "auto_renewal": true, "renewal_notice_period": "string"},
  "sla": {
    "performance_metrics": [{"name": "string", "target": "string", "measurement": "string"}],
    "penalty_clauses": ["string"],
    "support_terms": "string",
    "uptime_guarantee": "string",
    "response_time": "string",
    "resolution_time": "string"
  }
}`

func buildExtractionPrompt(text string) string {
	return fmt.Sprintf(`Extract the structured contract data from the text below.

Return exactly one JSON object with this shape, omitting any field the text does not support:

%s

Rules:
- Numbers are plain JSON numbers without currency symbols or thousands separators.
- Dates use YYYY-MM-DD where the text allows it, otherwise the literal text.
- "payment_terms" keeps the contract wording, for example "Net 30".
- Do not wrap the JSON in markdown fences or add commentary.

Contract text:
---
%s
---`, draftShape, text)
}
