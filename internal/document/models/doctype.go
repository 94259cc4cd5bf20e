package models

// docTypes is the closed vocabulary of document type codes. It is the union
// of federal slips, Quebec releve slips, and the supporting receipt types the
// rules engine knows about, plus OTHER for everything else. Validation rules
// key on these codes, so free-form types are rejected at the boundary.
var docTypes = map[string]bool{
	// Federal slips
	"T4": true, "T4A": true, "T5": true, "T3": true, "T5008": true,
	"T2202": true, "T4RSP": true, "T2125": true, "T2200": true,

	// Quebec releve slips
	"RL1": true, "RL2": true, "RL3": true, "RL8": true,
	"RL16": true, "RL18": true, "RL24": true,

	// Supporting receipts
	"RRSP_RECEIPT": true, "CHILDCARE_RECEIPT": true, "MEDICAL_RECEIPT": true,
	"DONATION_RECEIPT": true,

	"OTHER": true,
}

// ValidDocType reports whether code is in the closed vocabulary. Codes are
// expected uppercase; callers normalize before checking.
func ValidDocType(code string) bool {
	return docTypes[code]
}
