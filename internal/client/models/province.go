package models

// provinces lists the thirteen Canadian province and territory codes.
var provinces = map[string]bool{
	"AB": true, "BC": true, "MB": true, "NB": true, "NL": true,
	"NS": true, "NT": true, "NU": true, "ON": true, "PE": true,
	"QC": true, "SK": true, "YT": true,
}

// ValidProvince reports whether code is a recognized province or territory.
// Codes are expected uppercase; callers normalize before checking.
func ValidProvince(code string) bool {
	return provinces[code]
}
