// Package rules manages the validation rule catalog: normalising records on
// read and before write, CRUD over a REST transport, bulk replace and
// diff-based reconcile, and local evaluation of rules against form entries.
package rules

// ValidationType selects how a rule is evaluated.
type ValidationType string

const (
	TypeLength ValidationType = "LENGTH"
	TypeRegex  ValidationType = "REGEX"
	TypeRange  ValidationType = "RANGE"
	TypeCustom ValidationType = "CUSTOM"
)

// Category groups rules in the catalog UI.
type Category string

const (
	CategoryIdentity  Category = "IDENTITY"
	CategoryFinancial Category = "FINANCIAL"
	CategoryContact   Category = "CONTACT"
)

// Severity values after read normalisation.
const (
	SeverityHigh    = "high"
	SeverityMedium  = "medium"
	SeverityLow     = "low"
	SeverityDefault = "error"
)

// Parameter is one named argument of a rule, such as min or pattern.
type Parameter struct {
	Name  string `json:"name" yaml:"name" validate:"required" diff:"name"`
	Value string `json:"value" yaml:"value" diff:"value"`
}

// Record is the wire shape of a rule as the backend sends and accepts it.
// ID is left untyped because the backend is not consistent about it.
type Record struct {
	ID             any         `json:"id,omitempty" yaml:"id,omitempty"`
	RuleCode       string      `json:"ruleCode" yaml:"ruleCode"`
	RuleName       string      `json:"ruleName" yaml:"ruleName"`
	Description    string      `json:"description,omitempty" yaml:"description,omitempty"`
	TargetEntity   string      `json:"targetEntity,omitempty" yaml:"targetEntity,omitempty"`
	TargetField    string      `json:"targetField" yaml:"targetField"`
	ValidationType string      `json:"validationType" yaml:"validationType"`
	Severity       string      `json:"severity,omitempty" yaml:"severity,omitempty"`
	Category       string      `json:"category,omitempty" yaml:"category,omitempty"`
	Active         *bool       `json:"active,omitempty" yaml:"active,omitempty"`
	DisplayOrder   int         `json:"displayOrder" yaml:"displayOrder"`
	Condition      *string     `json:"condition,omitempty" yaml:"condition,omitempty"`
	ErrorMessage   string      `json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`
	Parameters     []Parameter `json:"parameters" yaml:"parameters"`
}

// Rule is a normalised validation rule.
//
// IDMinted is set when the source id was not numeric and a new one was
// minted from the clock. Such a rule is unknown to the backend under that id:
// Reconcile creates it and Update refuses it.
type Rule struct {
	ID             int64          `json:"id" diff:"-"`
	IDMinted       bool           `json:"idMinted,omitempty" diff:"-"`
	RuleCode       string         `json:"ruleCode" validate:"required" diff:"ruleCode"`
	RuleName       string         `json:"ruleName" validate:"required" diff:"ruleName"`
	Description    string         `json:"description,omitempty" diff:"description"`
	TargetEntity   string         `json:"targetEntity,omitempty" diff:"targetEntity"`
	TargetField    string         `json:"targetField" validate:"required" diff:"targetField"`
	ValidationType ValidationType `json:"validationType" validate:"required,oneof=LENGTH REGEX RANGE CUSTOM" diff:"validationType"`
	Severity       string         `json:"severity" validate:"omitempty,severity" diff:"severity"`
	Category       Category       `json:"category,omitempty" validate:"omitempty,oneof=IDENTITY FINANCIAL CONTACT" diff:"category"`
	Active         bool           `json:"active" diff:"active"`
	DisplayOrder   int            `json:"displayOrder" diff:"displayOrder"`
	Condition      string         `json:"condition,omitempty" validate:"condition" diff:"condition"`
	ErrorMessage   string         `json:"errorMessage,omitempty" diff:"errorMessage"`
	Parameters     []Parameter    `json:"parameters" validate:"min=1,dive" diff:"parameters"`
}

// Param returns the value of the named parameter.
func (r Rule) Param(name string) (string, bool) {
	for _, p := range r.Parameters {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// TestResult is the backend verdict for a sample value.
type TestResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}
