package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        string    `gorm:"type:varchar(64);primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate assigns a UUID when the caller did not supply an identifier
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// ProjectType is the business category a project belongs to
type ProjectType string

const (
	ProjectTypeGeneration    ProjectType = "generation"
	ProjectTypeGrid          ProjectType = "grid"
	ProjectTypeNewEnergy     ProjectType = "new_energy"
	ProjectTypeInternational ProjectType = "international"
	ProjectTypeMunicipal     ProjectType = "municipal"
	ProjectTypeEnvironment   ProjectType = "environment"
	ProjectTypeSurvey        ProjectType = "survey"
	ProjectTypeDigital       ProjectType = "digital"
	ProjectTypeGreenChem     ProjectType = "green_chem"
)

var projectTypeLabels = map[ProjectType]string{
	ProjectTypeGeneration:    "发电",
	ProjectTypeGrid:          "电网",
	ProjectTypeNewEnergy:     "新能源",
	ProjectTypeInternational: "国际",
	ProjectTypeMunicipal:     "市政",
	ProjectTypeEnvironment:   "环保",
	ProjectTypeSurvey:        "勘测设计",
	ProjectTypeDigital:       "数字科技",
	ProjectTypeGreenChem:     "绿色化工",
}

// AllProjectTypes returns every project type in display order
func AllProjectTypes() []ProjectType {
	return []ProjectType{
		ProjectTypeGeneration,
		ProjectTypeGrid,
		ProjectTypeNewEnergy,
		ProjectTypeInternational,
		ProjectTypeMunicipal,
		ProjectTypeEnvironment,
		ProjectTypeSurvey,
		ProjectTypeDigital,
		ProjectTypeGreenChem,
	}
}

// IsValid checks if the project type is one of the known categories
func (t ProjectType) IsValid() bool {
	_, ok := projectTypeLabels[t]
	return ok
}

// Label returns the display label for the project type
func (t ProjectType) Label() string {
	if label, ok := projectTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// ProjectStatus represents the lifecycle stage of a project
type ProjectStatus string

const (
	ProjectStatusPlanning     ProjectStatus = "planning"
	ProjectStatusConstruction ProjectStatus = "construction"
	ProjectStatusAcceptance   ProjectStatus = "acceptance"
	ProjectStatusCompleted    ProjectStatus = "completed"
)

var projectStatusLabels = map[ProjectStatus]string{
	ProjectStatusPlanning:     "筹备中",
	ProjectStatusConstruction: "在建",
	ProjectStatusAcceptance:   "竣工验收",
	ProjectStatusCompleted:    "已完工",
}

// IsValid checks if the project status is known
func (s ProjectStatus) IsValid() bool {
	_, ok := projectStatusLabels[s]
	return ok
}

// Label returns the display label for the project status
func (s ProjectStatus) Label() string {
	if label, ok := projectStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Project represents an engineering or infrastructure project
type Project struct {
	BaseModel
	Name            string        `gorm:"type:varchar(200);not null;index"`
	ProjectNumber   string        `gorm:"type:varchar(50);index;column:project_number"` // External reference used by the ERP payment sync
	Type            ProjectType   `gorm:"type:varchar(50);not null;index"`
	Status          ProjectStatus `gorm:"type:varchar(50);not null;index"`
	Location        string        `gorm:"type:varchar(200)"`
	ManagerName     string        `gorm:"type:varchar(200)"`
	Progress        int           `gorm:"not null;default:0"`
	ContractValue   float64       `gorm:"type:decimal(15,2);not null;default:0"`
	PaymentReceived float64       `gorm:"type:decimal(15,2);not null;default:0"`
	Stakeholders    []Stakeholder `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

// IsActive reports whether the project is still running
func (p *Project) IsActive() bool {
	return p.Progress < 100
}

// ClampProgress bounds a progress value to [0,100]
func ClampProgress(progress int) int {
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

// Stakeholder is a named contact owned by exactly one project.
// The identifier is only unique within its project.
type Stakeholder struct {
	ProjectID string    `gorm:"type:varchar(64);primaryKey"`
	ID        string    `gorm:"type:varchar(64);primaryKey"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Role      string    `gorm:"type:varchar(200)"`
	CreatedAt time.Time `gorm:"not null"`
}

// FeedbackStatus represents where a feedback item is in its handling
type FeedbackStatus string

const (
	FeedbackStatusPending    FeedbackStatus = "pending"
	FeedbackStatusInProgress FeedbackStatus = "in_progress"
	FeedbackStatusAssigned   FeedbackStatus = "assigned"
	FeedbackStatusResolved   FeedbackStatus = "resolved"
)

var feedbackStatusLabels = map[FeedbackStatus]string{
	FeedbackStatusPending:    "待处理",
	FeedbackStatusInProgress: "处理中",
	FeedbackStatusAssigned:   "已指派",
	FeedbackStatusResolved:   "已解决",
}

// IsValid checks if the feedback status is known
func (s FeedbackStatus) IsValid() bool {
	_, ok := feedbackStatusLabels[s]
	return ok
}

// Label returns the display label for the feedback status
func (s FeedbackStatus) Label() string {
	if label, ok := feedbackStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Feedback is a client or stakeholder communication that needs a response.
// ProjectID and StakeholderID are weak references resolved by lookup.
type Feedback struct {
	BaseModel
	ProjectID     string         `gorm:"type:varchar(64);not null;index"`
	StakeholderID string         `gorm:"type:varchar(64)"`
	Content       string         `gorm:"type:text;not null"`
	ReceivedDate  string         `gorm:"type:varchar(10);not null;index"`
	Status        FeedbackStatus `gorm:"type:varchar(50);not null;index"`
	AssignedTo    string         `gorm:"type:varchar(200)"`
	Response      *string        `gorm:"type:text"`
}

// TableName overrides the pluralized default
func (Feedback) TableName() string {
	return "feedback"
}

// Favorite marks a project as pinned on the dashboard
type Favorite struct {
	ProjectID string    `gorm:"type:varchar(64);primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
}

// AuditAction represents the type of action being audited
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

// AuditLog records a successful modifying request
type AuditLog struct {
	ID         string      `gorm:"type:varchar(64);primaryKey"`
	Action     AuditAction `gorm:"type:varchar(20);not null;index"`
	EntityType string      `gorm:"type:varchar(50);not null;index"`
	EntityID   string      `gorm:"type:varchar(64);index"`
	Method     string      `gorm:"type:varchar(10);not null"`
	Path       string      `gorm:"type:varchar(500);not null"`
	RemoteAddr string      `gorm:"type:varchar(100)"`
	RequestID  string      `gorm:"type:varchar(64)"`
	NewValues  string      `gorm:"type:text"`
	CreatedAt  time.Time   `gorm:"not null;index"`
}

// BeforeCreate assigns the audit log identifier
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}
