package pii

// Type identifies the kind of PII a detector matched.
type Type string

const (
	TypePhone         Type = "phone"
	TypeEmail         Type = "email"
	TypePANCard       Type = "pan_card"
	TypeAadhaar       Type = "aadhaar"
	TypeAccountNumber Type = "account_number"
	TypeCreditCard    Type = "credit_card"
)

// Severity ranks how sensitive a detection is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
)

// MaskStrategy selects how a matched span is rewritten.
type MaskStrategy string

const (
	MaskFull       MaskStrategy = "full_mask"
	MaskLast4      MaskStrategy = "last_4_digits"
	MaskDomainOnly MaskStrategy = "domain_only"
	MaskPartial    MaskStrategy = "partial_mask"
)

// Entity is one detected and masked PII span. Offsets index the original
// text; every mask strategy preserves span length, so End-Start always
// equals len(Original).
type Entity struct {
	Type     Type     `json:"type"`
	Original string   `json:"-"`
	Masked   string   `json:"masked"`
	Start    int      `json:"start"`
	End      int      `json:"end"`
	Severity Severity `json:"severity"`
	// Hash is a SHA-256 digest of the original value, kept so audit
	// records never need the value itself.
	Hash string `json:"hash"`
}
