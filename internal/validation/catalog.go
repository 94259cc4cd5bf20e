package validation

// PairingRule requires that a federal slip type present in a Quebec client's
// tax year be matched by its provincial equivalent. The trigger is implicit:
// the rule applies whenever the federal type is present.
type PairingRule struct {
	Code        string
	Federal     string
	Provincial  string
	Description string
	Severity    Severity
}

// ConditionalRule requires a supporting document type whenever its trigger
// predicate holds for the client's profile and record.
type ConditionalRule struct {
	Code            string
	Trigger         func(Profile, ClientContext) bool
	RequiredDocType string
	Description     string
	Severity        Severity
}

// Catalog is the full declarative rule set. It is immutable, constructed
// once, and passed to the service so evaluators stay independently testable
// with substitute catalogs. Evaluators iterate it generically; adding an
// entry never requires evaluator changes.
type Catalog struct {
	Pairing     []PairingRule
	Conditional []ConditionalRule
}

func flagTrigger(flag string) func(Profile, ClientContext) bool {
	return func(p Profile, _ ClientContext) bool {
		return p.Flag(flag)
	}
}

// DefaultCatalog returns the production rule set.
func DefaultCatalog() Catalog {
	return Catalog{
		Pairing: []PairingRule{
			{
				Code:        "QUEBEC_T4_RL1_PAIR",
				Federal:     "T4",
				Provincial:  "RL1",
				Description: "T4 requires matching RL-1 for Quebec residents",
				Severity:    SeverityError,
			},
			{
				Code:        "QUEBEC_T4A_RL2_PAIR",
				Federal:     "T4A",
				Provincial:  "RL2",
				Description: "T4A requires matching RL-2 for Quebec residents",
				Severity:    SeverityError,
			},
			{
				Code:        "QUEBEC_T5_RL3_PAIR",
				Federal:     "T5",
				Provincial:  "RL3",
				Description: "T5 requires matching RL-3 for Quebec residents",
				Severity:    SeverityError,
			},
			{
				Code:        "QUEBEC_T3_RL16_PAIR",
				Federal:     "T3",
				Provincial:  "RL16",
				Description: "T3 requires matching RL-16 for Quebec residents",
				Severity:    SeverityError,
			},
			{
				Code:        "QUEBEC_T5008_RL18_PAIR",
				Federal:     "T5008",
				Provincial:  "RL18",
				Description: "T5008 requires matching RL-18 for Quebec residents",
				Severity:    SeverityError,
			},
			{
				Code:        "QUEBEC_T2202_RL8_PAIR",
				Federal:     "T2202",
				Provincial:  "RL8",
				Description: "T2202 requires matching RL-8 for Quebec residents",
				Severity:    SeverityError,
			},
			{
				Code:        "QUEBEC_T4RSP_RL2_PAIR",
				Federal:     "T4RSP",
				Provincial:  "RL2",
				Description: "T4RSP requires matching RL-2 for Quebec residents",
				Severity:    SeverityError,
			},
		},
		Conditional: []ConditionalRule{
			{
				Code:            "RRSP_RECEIPT_REQUIRED",
				Trigger:         flagTrigger("has_rrsp_contributions"),
				RequiredDocType: "RRSP_RECEIPT",
				Description:     "RRSP contributions require contribution receipts",
				Severity:        SeverityError,
			},
			{
				Code:            "CHILDCARE_RECEIPT_REQUIRED",
				Trigger:         flagTrigger("has_childcare_expenses"),
				RequiredDocType: "CHILDCARE_RECEIPT",
				Description:     "Childcare expenses require receipts",
				Severity:        SeverityError,
			},
			{
				Code: "QUEBEC_CHILDCARE_RL24_REQUIRED",
				Trigger: func(p Profile, c ClientContext) bool {
					return p.Flag("has_childcare_expenses") && c.Province == ProvinceQuebec
				},
				RequiredDocType: "RL24",
				Description:     "Quebec childcare expenses require RL-24",
				Severity:        SeverityError,
			},
			{
				Code:            "MEDICAL_RECEIPTS_REQUIRED",
				Trigger:         flagTrigger("has_medical_expenses"),
				RequiredDocType: "MEDICAL_RECEIPT",
				Description:     "Medical expense claims require receipts",
				Severity:        SeverityWarning,
			},
			{
				Code:            "DONATION_RECEIPTS_REQUIRED",
				Trigger:         flagTrigger("has_donations"),
				RequiredDocType: "DONATION_RECEIPT",
				Description:     "Charitable donations require official receipts",
				Severity:        SeverityError,
			},
			{
				Code:            "HOME_OFFICE_T2200_REQUIRED",
				Trigger:         flagTrigger("claims_home_office"),
				RequiredDocType: "T2200",
				Description:     "Home office expenses require T2200 from employer",
				Severity:        SeverityError,
			},
			{
				Code:            "EMPLOYMENT_T4_REQUIRED",
				Trigger:         flagTrigger("has_employment_income"),
				RequiredDocType: "T4",
				Description:     "Employment income requires T4",
				Severity:        SeverityError,
			},
			{
				Code:            "SELF_EMPLOYMENT_T2125_REQUIRED",
				Trigger:         flagTrigger("has_self_employment"),
				RequiredDocType: "T2125",
				Description:     "Self-employment income requires T2125",
				Severity:        SeverityError,
			},
			{
				Code:            "INVESTMENT_T5_REQUIRED",
				Trigger:         flagTrigger("has_investment_income"),
				RequiredDocType: "T5",
				Description:     "Investment income requires T5 or T3",
				Severity:        SeverityWarning,
			},
		},
	}
}

// incomeSlipTypes is the fixed backstop set checked by the income-presence
// evaluator, independent of profile.
var incomeSlipTypes = []string{"T4", "T4A", "T5", "T3", "T2125"}

// recurringDocTypes is the allow-list for the year-over-year comparator.
// Types outside this list are never flagged even if they disappeared,
// avoiding false positives on one-off documents.
var recurringDocTypes = map[string]bool{
	"T4": true, "T5": true, "T4A": true,
	"RL1": true, "RL3": true, "RL2": true,
}
