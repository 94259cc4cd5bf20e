package validation

import (
	"fmt"
	"time"

	id "taxsync/pkg/domain"
)

// compareYearOverYear flags recurring document types present in the prior
// year but absent this year. First-year clients (no prior docs) produce no
// findings. Only types on the recurring allow-list are ever flagged.
//
// The message embeds the entity recovered from the prior year's matching
// document: extracted employer/payer name, else its subtype label, else
// "previous employer". This fallback order intentionally differs from the
// pairing evaluator's, which has no subtype step; unifying them would
// silently change user-facing messages.
func compareYearOverYear(taxYearID id.TaxYearID, previousDocs, currentDocs []DocumentSnapshot, now time.Time) []Finding {
	if len(previousDocs) == 0 {
		return nil
	}

	current := docTypeSet(currentDocs)
	seen := make(map[string]bool)
	var findings []Finding
	for _, prevDoc := range previousDocs {
		docType := prevDoc.DocType
		if seen[docType] || current[docType] || !recurringDocTypes[docType] {
			continue
		}
		seen[docType] = true

		entityName := prevDoc.entityName()
		if entityName == "" {
			entityName = prevDoc.DocSubtype
		}
		if entityName == "" {
			entityName = "previous employer"
		}

		findings = append(findings, Finding{
			TaxYearID:      taxYearID,
			RuleCode:       RuleCodeYearOverYear,
			Status:         StatusWarning,
			Severity:       SeverityWarning,
			Message:        fmt.Sprintf("Last year you uploaded %s from %s. Did your situation change?", docType, entityName),
			MissingDocType: docType,
			CheckedAt:      now,
		})
	}
	return findings
}
