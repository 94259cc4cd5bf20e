package models

// Status is the lifecycle state of a tax year filing.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusInReview  Status = "in_review"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// statusTransitions is the allowed lifecycle graph. A submitted or in-review
// year can be sent back to draft when the accountant needs more documents.
var statusTransitions = map[Status][]Status{
	StatusDraft:     {StatusSubmitted},
	StatusSubmitted: {StatusInReview, StatusDraft},
	StatusInReview:  {StatusCompleted, StatusDraft},
	StatusCompleted: {StatusArchived},
	StatusArchived:  {},
}

// CanTransitionTo reports whether the lifecycle allows moving to target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Mutable reports whether documents and profile edits are accepted. Only
// draft years are mutable; anything later is frozen for review.
func (s Status) Mutable() bool {
	return s == StatusDraft
}
