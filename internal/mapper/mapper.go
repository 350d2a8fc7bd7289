package mapper

import (
	"github.com/straye-as/project-desk-api/internal/domain"
	"github.com/straye-as/project-desk-api/internal/feedback"
)

const timestampLayout = "2006-01-02T15:04:05Z"

// ToStakeholderDTO converts Stakeholder to StakeholderDTO
func ToStakeholderDTO(s *domain.Stakeholder) domain.StakeholderDTO {
	return domain.StakeholderDTO{
		ID:        s.ID,
		ProjectID: s.ProjectID,
		Name:      s.Name,
		Role:      s.Role,
	}
}

// ToProjectDTO converts Project to ProjectDTO with display labels
func ToProjectDTO(project *domain.Project, isFavorite bool) domain.ProjectDTO {
	stakeholders := make([]domain.StakeholderDTO, len(project.Stakeholders))
	for i := range project.Stakeholders {
		stakeholders[i] = ToStakeholderDTO(&project.Stakeholders[i])
	}

	return domain.ProjectDTO{
		ID:              project.ID,
		Name:            project.Name,
		ProjectNumber:   project.ProjectNumber,
		Type:            project.Type,
		TypeLabel:       project.Type.Label(),
		Status:          project.Status,
		StatusLabel:     project.Status.Label(),
		Location:        project.Location,
		ManagerName:     project.ManagerName,
		Progress:        project.Progress,
		ContractValue:   project.ContractValue,
		PaymentReceived: project.PaymentReceived,
		IsFavorite:      isFavorite,
		Stakeholders:    stakeholders,
		CreatedAt:       project.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:       project.UpdatedAt.UTC().Format(timestampLayout),
	}
}

// ToProjectDTOs converts a slice, consulting favorites for each project
func ToProjectDTOs(projects []domain.Project, favorites map[string]struct{}) []domain.ProjectDTO {
	dtos := make([]domain.ProjectDTO, len(projects))
	for i := range projects {
		_, fav := favorites[projects[i].ID]
		dtos[i] = ToProjectDTO(&projects[i], fav)
	}
	return dtos
}

// ToFeedbackDTO converts Feedback to FeedbackDTO, resolving its weak references through dir.
// Unresolved references render as placeholders.
func ToFeedbackDTO(fb *domain.Feedback, dir *feedback.Directory) domain.FeedbackDTO {
	_, projectFound := dir.Project(fb.ProjectID)
	stakeholder, stakeholderFound := dir.Stakeholder(fb.ProjectID, fb.StakeholderID)

	dto := domain.FeedbackDTO{
		ID:               fb.ID,
		ProjectID:        fb.ProjectID,
		ProjectName:      dir.ProjectName(fb.ProjectID),
		StakeholderID:    fb.StakeholderID,
		StakeholderName:  dir.StakeholderName(fb.ProjectID, fb.StakeholderID),
		Content:          fb.Content,
		ReceivedDate:     fb.ReceivedDate,
		Status:           fb.Status,
		StatusLabel:      fb.Status.Label(),
		AssignedTo:       fb.AssignedTo,
		Response:         fb.Response,
		ProjectResolved:  projectFound,
		StakeholderFound: stakeholderFound,
	}
	if stakeholderFound {
		dto.StakeholderRole = stakeholder.Role
	}
	return dto
}

// ToFeedbackDTOs converts a slice preserving order
func ToFeedbackDTOs(items []domain.Feedback, dir *feedback.Directory) []domain.FeedbackDTO {
	dtos := make([]domain.FeedbackDTO, len(items))
	for i := range items {
		dtos[i] = ToFeedbackDTO(&items[i], dir)
	}
	return dtos
}

// DisplayText is what the response editor shows: the draft, else the saved response
func DisplayText(draft string, response *string) string {
	if draft != "" {
		return draft
	}
	if response != nil {
		return *response
	}
	return ""
}

// ToDeskSessionDTO converts a workflow snapshot; detail is nil when nothing is selected
// or the selected feedback no longer exists
func ToDeskSessionDTO(sessionID string, snap feedback.Snapshot, detail *domain.FeedbackDTO) domain.DeskSessionDTO {
	dto := domain.DeskSessionDTO{
		ID:         sessionID,
		Phase:      string(snap.Phase),
		Draft:      snap.Draft,
		Generating: snap.Generating,
		CanSave:    snap.HasSelection() && snap.Draft != "",
		Feedback:   detail,
	}
	if snap.HasSelection() {
		id := snap.FeedbackID
		dto.FeedbackID = &id
	}

	var response *string
	if detail != nil {
		response = detail.Response
	}
	dto.DisplayText = DisplayText(snap.Draft, response)
	return dto
}
