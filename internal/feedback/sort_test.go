package feedback_test

import (
	"testing"

	"github.com/straye-as/project-desk-api/internal/domain"
	"github.com/straye-as/project-desk-api/internal/feedback"
	"github.com/stretchr/testify/assert"
)

func item(id string, status domain.FeedbackStatus) domain.Feedback {
	f := domain.Feedback{ProjectID: "p1", Status: status, Content: "内容"}
	f.ID = id
	return f
}

func ids(feedbacks []domain.Feedback) []string {
	out := make([]string, len(feedbacks))
	for i := range feedbacks {
		out[i] = feedbacks[i].ID
	}
	return out
}

func TestSortFeedback(t *testing.T) {
	t.Run("pending items come first in stable order", func(t *testing.T) {
		input := []domain.Feedback{
			item("f1", domain.FeedbackStatusResolved),
			item("f2", domain.FeedbackStatusPending),
			item("f3", domain.FeedbackStatusInProgress),
			item("f4", domain.FeedbackStatusPending),
			item("f5", domain.FeedbackStatusAssigned),
		}

		sorted := feedback.SortFeedback(input)

		assert.Equal(t, []string{"f2", "f4", "f1", "f3", "f5"}, ids(sorted))
		assert.Equal(t, []string{"f1", "f2", "f3", "f4", "f5"}, ids(input), "input must not be reordered")
	})

	t.Run("partition holds", func(t *testing.T) {
		input := []domain.Feedback{
			item("a", domain.FeedbackStatusAssigned),
			item("b", domain.FeedbackStatusPending),
			item("c", domain.FeedbackStatusPending),
			item("d", domain.FeedbackStatusResolved),
			item("e", domain.FeedbackStatusPending),
		}
		sorted := feedback.SortFeedback(input)

		seenNonPending := false
		for _, f := range sorted {
			if f.Status != domain.FeedbackStatusPending {
				seenNonPending = true
				continue
			}
			assert.False(t, seenNonPending, "pending item %s after a non-pending item", f.ID)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		input := []domain.Feedback{
			item("f1", domain.FeedbackStatusResolved),
			item("f2", domain.FeedbackStatusPending),
			item("f3", domain.FeedbackStatusAssigned),
		}
		once := feedback.SortFeedback(input)
		twice := feedback.SortFeedback(once)
		assert.Equal(t, ids(once), ids(twice))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, feedback.SortFeedback(nil))
	})
}
