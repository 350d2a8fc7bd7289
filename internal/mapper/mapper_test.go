package mapper_test

import (
	"testing"
	"time"

	"github.com/straye-as/project-desk-api/internal/domain"
	"github.com/straye-as/project-desk-api/internal/feedback"
	"github.com/straye-as/project-desk-api/internal/mapper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func project() domain.Project {
	p := domain.Project{
		Name:          "西郊光伏",
		Type:          domain.ProjectTypeNewEnergy,
		Status:        domain.ProjectStatusAcceptance,
		Progress:      90,
		ContractValue: 500,
		Stakeholders:  []domain.Stakeholder{{ProjectID: "p1", ID: "s1", Name: "刘总", Role: "甲方"}},
	}
	p.ID = "p1"
	p.CreatedAt = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	p.UpdatedAt = p.CreatedAt
	return p
}

func TestToProjectDTO(t *testing.T) {
	p := project()
	dto := mapper.ToProjectDTO(&p, true)

	assert.Equal(t, "p1", dto.ID)
	assert.Equal(t, "新能源", dto.TypeLabel)
	assert.Equal(t, "竣工验收", dto.StatusLabel)
	assert.True(t, dto.IsFavorite)
	assert.Equal(t, "2024-01-02T03:04:05Z", dto.CreatedAt)
	require.Len(t, dto.Stakeholders, 1)
	assert.Equal(t, "刘总", dto.Stakeholders[0].Name)

	dtos := mapper.ToProjectDTOs([]domain.Project{p}, map[string]struct{}{})
	assert.False(t, dtos[0].IsFavorite)
}

func TestToFeedbackDTO(t *testing.T) {
	dir := feedback.NewDirectory([]domain.Project{project()})

	fb := domain.Feedback{ProjectID: "p1", StakeholderID: "s1", Content: "漏水", Status: domain.FeedbackStatusPending}
	fb.ID = "f1"
	dto := mapper.ToFeedbackDTO(&fb, dir)
	assert.Equal(t, "西郊光伏", dto.ProjectName)
	assert.Equal(t, "刘总", dto.StakeholderName)
	assert.Equal(t, "甲方", dto.StakeholderRole)
	assert.Equal(t, "待处理", dto.StatusLabel)
	assert.True(t, dto.ProjectResolved)
	assert.True(t, dto.StakeholderFound)

	orphan := domain.Feedback{ProjectID: "gone", StakeholderID: "s1", Status: domain.FeedbackStatusResolved}
	dto = mapper.ToFeedbackDTO(&orphan, dir)
	assert.Equal(t, feedback.UnknownProjectName, dto.ProjectName)
	assert.Equal(t, feedback.UnknownStakeholderName, dto.StakeholderName)
	assert.False(t, dto.ProjectResolved)
	assert.Empty(t, dto.StakeholderRole)
}

func TestDisplayText(t *testing.T) {
	saved := "已处理"
	assert.Equal(t, "draft", mapper.DisplayText("draft", &saved))
	assert.Equal(t, "已处理", mapper.DisplayText("", &saved))
	assert.Equal(t, "", mapper.DisplayText("", nil))
}

func TestToDeskSessionDTO(t *testing.T) {
	idle := mapper.ToDeskSessionDTO("sess", feedback.Snapshot{Phase: feedback.PhaseIdle}, nil)
	assert.Equal(t, "idle", idle.Phase)
	assert.Nil(t, idle.FeedbackID)
	assert.False(t, idle.CanSave)

	saved := "旧回复"
	detail := &domain.FeedbackDTO{ID: "f1", Response: &saved}
	dto := mapper.ToDeskSessionDTO("sess", feedback.Snapshot{Phase: feedback.PhaseDetail, FeedbackID: "f1"}, detail)
	require.NotNil(t, dto.FeedbackID)
	assert.Equal(t, "f1", *dto.FeedbackID)
	assert.Equal(t, "旧回复", dto.DisplayText)
	assert.False(t, dto.CanSave)

	dto = mapper.ToDeskSessionDTO("sess", feedback.Snapshot{Phase: feedback.PhaseDraftReady, FeedbackID: "f1", Draft: "新回复"}, detail)
	assert.Equal(t, "新回复", dto.DisplayText)
	assert.True(t, dto.CanSave)
}
