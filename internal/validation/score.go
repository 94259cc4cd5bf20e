package validation

import "math"

// Aggregate reduces a finding list to a single 0-100 completeness score.
//
// An empty list scores 0: an empty rule set cannot be read as 100% complete,
// so the conservative default applies. Otherwise the raw score is
//
//	(passes - 2*errors - warnings) / total * 100
//
// where errors are fail-status findings with error severity, warnings are
// warning-status findings of any severity, and passes are pass-status
// findings. Errors weigh double because they represent missing mandatory
// documents. The raw value can go negative (many errors, few findings); it
// is clamped to [0, 100] and rounded to the nearest integer, collapsing all
// heavily-failing tax years to 0.
func Aggregate(findings []Finding) int {
	if len(findings) == 0 {
		return 0
	}

	var errors, warnings, passes int
	for _, f := range findings {
		switch {
		case f.Status == StatusFail && f.Severity == SeverityError:
			errors++
		case f.Status == StatusWarning:
			warnings++
		case f.Status == StatusPass:
			passes++
		}
	}

	raw := float64(passes-2*errors-warnings) / float64(len(findings)) * 100
	clamped := math.Max(0, math.Min(100, raw))
	return int(math.Round(clamped))
}
