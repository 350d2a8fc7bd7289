// Package feedback holds the client feedback inbox logic: ordering, weak
// reference lookups and the response drafting workflow.
package feedback

import "github.com/straye-as/project-desk-api/internal/domain"

// SortFeedback returns a new slice with every pending item first.
// Items within each group keep their original relative order and the input is not modified.
func SortFeedback(feedbacks []domain.Feedback) []domain.Feedback {
	result := make([]domain.Feedback, 0, len(feedbacks))
	for i := range feedbacks {
		if feedbacks[i].Status == domain.FeedbackStatusPending {
			result = append(result, feedbacks[i])
		}
	}
	for i := range feedbacks {
		if feedbacks[i].Status != domain.FeedbackStatusPending {
			result = append(result, feedbacks[i])
		}
	}
	return result
}
