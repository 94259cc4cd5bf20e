// Package validation implements the document-completeness rules engine: it
// takes a snapshot of a tax year (documents, self-reported profile, client
// province), evaluates the rule catalog against it, and produces a finding
// set plus a single 0-100 completeness score.
package validation

import (
	"time"

	id "taxsync/pkg/domain"
)

// Status is the outcome of one evaluated rule.
type Status string

const (
	StatusPass    Status = "pass"
	StatusFail    Status = "fail"
	StatusWarning Status = "warning"
)

// Severity classifies how serious a finding is, independent of its status.
// Errors represent missing mandatory documents and are penalized twice as
// heavily as warnings by the score aggregator.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Rule codes synthesized by evaluators that have no catalog entry.
const (
	RuleCodeIncomeSource = "HAS_INCOME_SOURCE"
	RuleCodeYearOverYear = "YEAR_OVER_YEAR_MISSING"
)

// Finding is one evaluation result produced during a validation run.
//
// Invariant: the full finding set for a tax year is replaced atomically on
// each run; findings are never mutated after creation within a run.
type Finding struct {
	TaxYearID      id.TaxYearID
	RuleCode       string
	Status         Status
	Severity       Severity
	Message        string
	MissingDocType string // empty when the finding does not point at a missing type
	CheckedAt      time.Time
}

// StoredFinding is the at-rest shape of a finding. Severity is an in-run
// scoring attribute and is not persisted.
type StoredFinding struct {
	TaxYearID      id.TaxYearID `json:"tax_year_id"`
	RuleCode       string       `json:"rule_code"`
	Status         Status       `json:"status"`
	Message        string       `json:"message"`
	MissingDocType string       `json:"missing_doc_type,omitempty"`
	CheckedAt      time.Time    `json:"checked_at"`
}

// Report is the result of one validation run, returned to callers and
// written back to the tax year.
type Report struct {
	CompletenessScore int       `json:"completeness_score"`
	Findings          []Finding `json:"findings"`
}

// Profile is the client's free-form self-reported tax profile: a mapping of
// boolean and numeric flags describing income sources and deductions. It is
// externally supplied, so accessors degrade gracefully: absent or malformed
// values read as falsy rather than erroring.
type Profile map[string]any

// Flag reports whether the named profile flag is explicitly true. Any other
// value, including absence and non-boolean junk, reads as false.
func (p Profile) Flag(name string) bool {
	v, ok := p[name]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// ClientContext is the slice of the client record that rule predicates see.
type ClientContext struct {
	ID       id.ClientID
	Province string
}

// ProvinceQuebec gates jurisdiction-specific rules.
const ProvinceQuebec = "QC"

// DocumentSnapshot is the read-only view of one uploaded document that the
// rules engine consumes. ExtractedData is produced by an external extraction
// collaborator and may be absent or arbitrarily shaped.
type DocumentSnapshot struct {
	ID            id.DocumentID
	DocType       string
	DocSubtype    string
	ExtractedData map[string]any
}

// entityName digs the employer or payer name out of extracted data.
// Checks employer_name first, then payer_name; first non-empty string wins.
func (d DocumentSnapshot) entityName() string {
	for _, key := range []string{"employer_name", "payer_name"} {
		if v, ok := d.ExtractedData[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// TaxYearContext is the full snapshot a validation run consumes: the tax
// year's documents and profile plus the owning client's jurisdiction.
type TaxYearContext struct {
	TaxYearID id.TaxYearID
	ClientID  id.ClientID
	Year      int
	Client    ClientContext
	Profile   Profile
	Documents []DocumentSnapshot
}

// docTypeSet returns the deduplicated document type codes present in the
// snapshot.
func docTypeSet(docs []DocumentSnapshot) map[string]bool {
	set := make(map[string]bool, len(docs))
	for _, d := range docs {
		set[d.DocType] = true
	}
	return set
}

// firstOfType returns the first document with the given type code, matching
// the "first upload wins" behavior for entity-name extraction.
func firstOfType(docs []DocumentSnapshot, docType string) (DocumentSnapshot, bool) {
	for _, d := range docs {
		if d.DocType == docType {
			return d, true
		}
	}
	return DocumentSnapshot{}, false
}
