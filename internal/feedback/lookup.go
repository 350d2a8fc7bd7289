package feedback

import (
	"fmt"

	"github.com/straye-as/project-desk-api/internal/domain"
)

// Placeholders shown when a weak reference does not resolve
const (
	UnknownProjectName     = "未知项目"
	UnknownStakeholderName = "未知客户"
	DefaultStakeholderRole = "客户"
)

type stakeholderKey struct {
	projectID     string
	stakeholderID string
}

// Directory resolves the project and stakeholder references carried by feedback.
// A miss is reported through the boolean result and never panics.
type Directory struct {
	projects     map[string]domain.Project
	stakeholders map[stakeholderKey]domain.Stakeholder
}

// NewDirectory indexes the given projects and their stakeholders
func NewDirectory(projects []domain.Project) *Directory {
	d := &Directory{
		projects:     make(map[string]domain.Project, len(projects)),
		stakeholders: make(map[stakeholderKey]domain.Stakeholder),
	}
	for _, p := range projects {
		d.projects[p.ID] = p
		for _, s := range p.Stakeholders {
			d.stakeholders[stakeholderKey{projectID: p.ID, stakeholderID: s.ID}] = s
		}
	}
	return d
}

// Project looks up a project by ID
func (d *Directory) Project(id string) (domain.Project, bool) {
	if d == nil {
		return domain.Project{}, false
	}
	p, ok := d.projects[id]
	return p, ok
}

// Stakeholder looks up a stakeholder within its owning project
func (d *Directory) Stakeholder(projectID, stakeholderID string) (domain.Stakeholder, bool) {
	if d == nil {
		return domain.Stakeholder{}, false
	}
	s, ok := d.stakeholders[stakeholderKey{projectID: projectID, stakeholderID: stakeholderID}]
	return s, ok
}

// ProjectName returns the project name or the unknown-project placeholder
func (d *Directory) ProjectName(id string) string {
	if p, ok := d.Project(id); ok {
		return p.Name
	}
	return UnknownProjectName
}

// StakeholderName returns the stakeholder name or the unknown-contact placeholder
func (d *Directory) StakeholderName(projectID, stakeholderID string) string {
	if s, ok := d.Stakeholder(projectID, stakeholderID); ok {
		return s.Name
	}
	return UnknownStakeholderName
}

// StakeholderLabel renders "name (role)" for the draft request, or the generic client label
func (d *Directory) StakeholderLabel(projectID, stakeholderID string) string {
	if s, ok := d.Stakeholder(projectID, stakeholderID); ok {
		return fmt.Sprintf("%s (%s)", s.Name, s.Role)
	}
	return DefaultStakeholderRole
}

// ContextSummary describes the project a feedback item belongs to.
// An unknown project yields the same template with empty fields.
func (d *Directory) ContextSummary(projectID string) string {
	p, ok := d.Project(projectID)
	if !ok {
		return ContextSummaryFor("", "", "")
	}
	return ContextSummaryFor(p.Name, p.Type.Label(), p.Status.Label())
}

// ContextSummaryFor formats the project context line
func ContextSummaryFor(name, typeLabel, statusLabel string) string {
	return fmt.Sprintf("项目名称：%s，类型：%s，当前阶段：%s", name, typeLabel, statusLabel)
}
