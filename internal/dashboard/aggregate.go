// Package dashboard computes the aggregate figures shown on the project dashboard.
// Every function is pure: no I/O, no mutation of its inputs, and total over
// well-typed input (negative amounts are not validated here).
package dashboard

import "github.com/straye-as/project-desk-api/internal/domain"

const (
	// DefaultPriorityLimit is how many active projects the priority strip shows
	DefaultPriorityLimit = 4
	// DefaultStreamLimit is how many feedback items the feedback stream shows
	DefaultStreamLimit = 4
)

// ActiveProjectCount counts projects whose progress is below 100
func ActiveProjectCount(projects []domain.Project) int {
	count := 0
	for i := range projects {
		if projects[i].IsActive() {
			count++
		}
	}
	return count
}

// PendingFeedbackCount counts feedback items still waiting for a response
func PendingFeedbackCount(feedbacks []domain.Feedback) int {
	count := 0
	for i := range feedbacks {
		if feedbacks[i].Status == domain.FeedbackStatusPending {
			count++
		}
	}
	return count
}

// TotalContractValue sums contract values, 0 for an empty collection
func TotalContractValue(projects []domain.Project) float64 {
	total := 0.0
	for i := range projects {
		total += projects[i].ContractValue
	}
	return total
}

// TotalPaymentReceived sums received payments, 0 for an empty collection
func TotalPaymentReceived(projects []domain.Project) float64 {
	total := 0.0
	for i := range projects {
		total += projects[i].PaymentReceived
	}
	return total
}

// ReceivedRatio returns received/contract as a percentage.
// It is 0 when the contract total is 0.
func ReceivedRatio(projects []domain.Project) float64 {
	contract := TotalContractValue(projects)
	if contract == 0 {
		return 0
	}
	return TotalPaymentReceived(projects) / contract * 100
}

// CountOfType counts projects in a single category
func CountOfType(projects []domain.Project, projectType domain.ProjectType) int {
	count := 0
	for i := range projects {
		if projects[i].Type == projectType {
			count++
		}
	}
	return count
}

// CountByType returns one entry per known category in display order,
// including categories with no projects.
func CountByType(projects []domain.Project) []domain.TypeCount {
	types := domain.AllProjectTypes()
	counts := make(map[domain.ProjectType]int, len(types))
	for i := range projects {
		counts[projects[i].Type]++
	}

	result := make([]domain.TypeCount, len(types))
	for i, t := range types {
		result[i] = domain.TypeCount{
			Type:  t,
			Label: t.Label(),
			Count: counts[t],
		}
	}
	return result
}

// FavoriteProjects keeps the projects for which isFavorite is true, in input order
func FavoriteProjects(projects []domain.Project, isFavorite func(projectID string) bool) []domain.Project {
	result := make([]domain.Project, 0)
	if isFavorite == nil {
		return result
	}
	for i := range projects {
		if isFavorite(projects[i].ID) {
			result = append(result, projects[i])
		}
	}
	return result
}

// PriorityProjects returns the first limit active projects
func PriorityProjects(projects []domain.Project, limit int) []domain.Project {
	result := make([]domain.Project, 0, max(limit, 0))
	for i := range projects {
		if len(result) >= limit {
			break
		}
		if projects[i].IsActive() {
			result = append(result, projects[i])
		}
	}
	return result
}

// FeedbackStream returns the first limit feedback items
func FeedbackStream(feedbacks []domain.Feedback, limit int) []domain.Feedback {
	if limit <= 0 {
		return []domain.Feedback{}
	}
	n := min(limit, len(feedbacks))
	result := make([]domain.Feedback, n)
	copy(result, feedbacks[:n])
	return result
}

// Summary bundles every dashboard aggregate
type Summary struct {
	ActiveProjectCount   int
	TotalProjectCount    int
	PendingFeedbackCount int
	TotalContractValue   float64
	TotalPaymentReceived float64
	ReceivedRatio        float64
	TypeCounts           []domain.TypeCount
	Favorites            []domain.Project
	Priority             []domain.Project
	Stream               []domain.Feedback
}

// Summarize computes the full dashboard summary
func Summarize(projects []domain.Project, feedbacks []domain.Feedback, isFavorite func(projectID string) bool) Summary {
	return Summary{
		ActiveProjectCount:   ActiveProjectCount(projects),
		TotalProjectCount:    len(projects),
		PendingFeedbackCount: PendingFeedbackCount(feedbacks),
		TotalContractValue:   TotalContractValue(projects),
		TotalPaymentReceived: TotalPaymentReceived(projects),
		ReceivedRatio:        ReceivedRatio(projects),
		TypeCounts:           CountByType(projects),
		Favorites:            FavoriteProjects(projects, isFavorite),
		Priority:             PriorityProjects(projects, DefaultPriorityLimit),
		Stream:               FeedbackStream(feedbacks, DefaultStreamLimit),
	}
}
