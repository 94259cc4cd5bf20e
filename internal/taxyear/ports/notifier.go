// Package ports declares the outbound interfaces of the tax year module.
package ports

import (
	"context"

	id "taxsync/pkg/domain"
)

// SubmissionNotice carries what the notifier needs to tell the accountant a
// filing is ready for review.
type SubmissionNotice struct {
	TaxYearID         id.TaxYearID
	ClientID          id.ClientID
	ClientName        string
	Year              int
	CompletenessScore int
}

// Notifier delivers submission notices. Delivery is best effort; the
// submission itself never fails because a notice could not be sent.
type Notifier interface {
	NotifySubmission(ctx context.Context, notice SubmissionNotice) error
}
