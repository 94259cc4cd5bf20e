package validation

import (
	"fmt"
	"time"

	id "taxsync/pkg/domain"
)

// This file holds the pure rule evaluators. No I/O, no side effects: each
// takes the snapshot plus catalog entries and returns zero or more findings.
// The orchestrator sequences them and pools the results before scoring.

// evaluatePairing applies the federal/provincial pairing rules. It only
// applies to Quebec clients; for everyone else it returns nothing.
//
// For each rule: federal present + provincial absent emits a fail naming the
// missing provincial code and the employer/payer from the federal slip's
// extracted data ("unknown employer" when extraction data is absent). Both
// present emits a pass. Federal absent emits nothing.
func evaluatePairing(taxYearID id.TaxYearID, docs []DocumentSnapshot, client ClientContext, rules []PairingRule, now time.Time) []Finding {
	if client.Province != ProvinceQuebec {
		return nil
	}

	present := docTypeSet(docs)
	var findings []Finding
	for _, rule := range rules {
		hasFederal := present[rule.Federal]
		hasProvincial := present[rule.Provincial]

		switch {
		case hasFederal && !hasProvincial:
			entityName := "unknown employer"
			if federalDoc, ok := firstOfType(docs, rule.Federal); ok {
				if name := federalDoc.entityName(); name != "" {
					entityName = name
				}
			}
			findings = append(findings, Finding{
				TaxYearID:      taxYearID,
				RuleCode:       rule.Code,
				Status:         StatusFail,
				Severity:       rule.Severity,
				Message:        fmt.Sprintf("Missing %s for %s. Quebec residents must have matching provincial slip.", rule.Provincial, entityName),
				MissingDocType: rule.Provincial,
				CheckedAt:      now,
			})
		case hasFederal && hasProvincial:
			findings = append(findings, Finding{
				TaxYearID: taxYearID,
				RuleCode:  rule.Code,
				Status:    StatusPass,
				Severity:  SeverityInfo,
				Message:   fmt.Sprintf("%s and %s pair complete", rule.Federal, rule.Provincial),
				CheckedAt: now,
			})
		}
	}
	return findings
}

// evaluateConditional applies the profile-triggered supporting-document
// rules. Untriggered rules emit nothing. A triggered rule whose document is
// absent fails, except warning-severity rules which emit a warning status;
// the declared severity is passed through either way.
func evaluateConditional(taxYearID id.TaxYearID, docs []DocumentSnapshot, profile Profile, client ClientContext, rules []ConditionalRule, now time.Time) []Finding {
	present := docTypeSet(docs)
	var findings []Finding
	for _, rule := range rules {
		if !rule.Trigger(profile, client) {
			continue
		}

		if present[rule.RequiredDocType] {
			findings = append(findings, Finding{
				TaxYearID: taxYearID,
				RuleCode:  rule.Code,
				Status:    StatusPass,
				Severity:  SeverityInfo,
				Message:   fmt.Sprintf("%s uploaded", rule.RequiredDocType),
				CheckedAt: now,
			})
			continue
		}

		status := StatusFail
		if rule.Severity == SeverityWarning {
			status = StatusWarning
		}
		findings = append(findings, Finding{
			TaxYearID:      taxYearID,
			RuleCode:       rule.Code,
			Status:         status,
			Severity:       rule.Severity,
			Message:        rule.Description,
			MissingDocType: rule.RequiredDocType,
			CheckedAt:      now,
		})
	}
	return findings
}

// evaluateIncomePresence is a coarse backstop independent of profile: one
// finding, failing when none of the income slip types is present.
func evaluateIncomePresence(taxYearID id.TaxYearID, docs []DocumentSnapshot, now time.Time) []Finding {
	present := docTypeSet(docs)
	hasIncomeDoc := false
	for _, docType := range incomeSlipTypes {
		if present[docType] {
			hasIncomeDoc = true
			break
		}
	}

	if !hasIncomeDoc {
		return []Finding{{
			TaxYearID: taxYearID,
			RuleCode:  RuleCodeIncomeSource,
			Status:    StatusFail,
			Severity:  SeverityError,
			Message:   "No income documents uploaded (T4, T5, T4A, etc.)",
			CheckedAt: now,
		}}
	}
	return []Finding{{
		TaxYearID: taxYearID,
		RuleCode:  RuleCodeIncomeSource,
		Status:    StatusPass,
		Severity:  SeverityInfo,
		Message:   "Income documents present",
		CheckedAt: now,
	}}
}
