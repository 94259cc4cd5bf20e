// Package adapters provides default implementations of the tax year ports.
package adapters

import (
	"context"
	"log/slog"

	"taxsync/internal/taxyear/ports"
)

// LogNotifier writes submission notices to the structured log. Stands in
// until an email or push channel is wired.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifySubmission(ctx context.Context, notice ports.SubmissionNotice) error {
	if n.logger != nil {
		n.logger.InfoContext(ctx, "tax year submitted for review",
			"tax_year_id", notice.TaxYearID,
			"client_id", notice.ClientID,
			"client_name", notice.ClientName,
			"year", notice.Year,
			"completeness_score", notice.CompletenessScore,
		)
	}
	return nil
}
