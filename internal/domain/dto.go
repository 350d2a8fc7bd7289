package domain

// ListResponse wraps a collection response
type ListResponse struct {
	Data  interface{} `json:"data"`
	Total int         `json:"total"`
}

// StakeholderDTO is the API representation of a stakeholder
type StakeholderDTO struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
	Role      string `json:"role"`
}

// ProjectDTO is the API representation of a project
type ProjectDTO struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	ProjectNumber   string           `json:"projectNumber,omitempty"`
	Type            ProjectType      `json:"type"`
	TypeLabel       string           `json:"typeLabel"`
	Status          ProjectStatus    `json:"status"`
	StatusLabel     string           `json:"statusLabel"`
	Location        string           `json:"location,omitempty"`
	ManagerName     string           `json:"managerName"`
	Progress        int              `json:"progress"`
	ContractValue   float64          `json:"contractValue"`
	PaymentReceived float64          `json:"paymentReceived"`
	IsFavorite      bool             `json:"isFavorite"`
	Stakeholders    []StakeholderDTO `json:"stakeholders"`
	CreatedAt       string           `json:"createdAt"`
	UpdatedAt       string           `json:"updatedAt"`
}

// FeedbackDTO is the API representation of a feedback item with resolved labels
type FeedbackDTO struct {
	ID               string         `json:"id"`
	ProjectID        string         `json:"projectId"`
	ProjectName      string         `json:"projectName"`
	StakeholderID    string         `json:"stakeholderId"`
	StakeholderName  string         `json:"stakeholderName"`
	StakeholderRole  string         `json:"stakeholderRole,omitempty"`
	Content          string         `json:"content"`
	ReceivedDate     string         `json:"receivedDate"`
	Status           FeedbackStatus `json:"status"`
	StatusLabel      string         `json:"statusLabel"`
	AssignedTo       string         `json:"assignedTo"`
	Response         *string        `json:"response,omitempty"`
	ProjectResolved  bool           `json:"projectResolved"`
	StakeholderFound bool           `json:"stakeholderFound"`
}

// TypeCount is the number of projects in one business category
type TypeCount struct {
	Type  ProjectType `json:"type"`
	Label string      `json:"label"`
	Count int         `json:"count"`
}

// DashboardMetrics is the aggregate view rendered by the dashboard
type DashboardMetrics struct {
	ActiveProjectCount   int           `json:"activeProjectCount"`
	TotalProjectCount    int           `json:"totalProjectCount"`
	PendingFeedbackCount int           `json:"pendingFeedbackCount"`
	TotalContractValue   float64       `json:"totalContractValue"`
	TotalPaymentReceived float64       `json:"totalPaymentReceived"`
	ReceivedRatio        float64       `json:"receivedRatio"`
	ProjectTypeCounts    []TypeCount   `json:"projectTypeCounts"`
	FavoriteProjects     []ProjectDTO  `json:"favoriteProjects"`
	PriorityProjects     []ProjectDTO  `json:"priorityProjects"`
	FeedbackStream       []FeedbackDTO `json:"feedbackStream"`
	GeneratedAt          string        `json:"generatedAt"`
}

// DeskSessionDTO describes the state of one response drafting session
type DeskSessionDTO struct {
	ID          string       `json:"id"`
	Phase       string       `json:"phase"`
	FeedbackID  *string      `json:"feedbackId,omitempty"`
	Draft       string       `json:"draft"`
	DisplayText string       `json:"displayText"`
	Generating  bool         `json:"generating"`
	CanSave     bool         `json:"canSave"`
	Feedback    *FeedbackDTO `json:"feedback,omitempty"`
}

// Request DTOs

// CreateProjectRequest is the payload for creating a project
type CreateProjectRequest struct {
	Name            string                     `json:"name" validate:"required,max=200"`
	ProjectNumber   string                     `json:"projectNumber" validate:"max=50"`
	Type            ProjectType                `json:"type" validate:"required,oneof=generation grid new_energy international municipal environment survey digital green_chem"`
	Status          ProjectStatus              `json:"status" validate:"required,oneof=planning construction acceptance completed"`
	Location        string                     `json:"location" validate:"max=200"`
	ManagerName     string                     `json:"managerName" validate:"max=200"`
	Progress        int                        `json:"progress" validate:"gte=0,lte=100"`
	ContractValue   float64                    `json:"contractValue" validate:"gte=0"`
	PaymentReceived float64                    `json:"paymentReceived" validate:"gte=0"`
	Stakeholders    []CreateStakeholderRequest `json:"stakeholders" validate:"dive"`
}

// UpdateProjectRequest is the payload for updating a project
type UpdateProjectRequest struct {
	Name            string        `json:"name" validate:"required,max=200"`
	ProjectNumber   string        `json:"projectNumber" validate:"max=50"`
	Type            ProjectType   `json:"type" validate:"required,oneof=generation grid new_energy international municipal environment survey digital green_chem"`
	Status          ProjectStatus `json:"status" validate:"required,oneof=planning construction acceptance completed"`
	Location        string        `json:"location" validate:"max=200"`
	ManagerName     string        `json:"managerName" validate:"max=200"`
	Progress        int           `json:"progress" validate:"gte=0,lte=100"`
	ContractValue   float64       `json:"contractValue" validate:"gte=0"`
	PaymentReceived float64       `json:"paymentReceived" validate:"gte=0"`
}

// CreateStakeholderRequest is the payload for adding a stakeholder to a project
type CreateStakeholderRequest struct {
	ID   string `json:"id" validate:"max=64"`
	Name string `json:"name" validate:"required,max=200"`
	Role string `json:"role" validate:"max=200"`
}

// CreateFeedbackRequest is the payload for recording incoming feedback
type CreateFeedbackRequest struct {
	ProjectID     string `json:"projectId" validate:"required,max=64"`
	StakeholderID string `json:"stakeholderId" validate:"required,max=64"`
	Content       string `json:"content" validate:"required"`
	ReceivedDate  string `json:"receivedDate" validate:"omitempty,datetime=2006-01-02"`
	AssignedTo    string `json:"assignedTo" validate:"max=200"`
}

// UpdateFeedbackRequest changes the handling state of a feedback item
type UpdateFeedbackRequest struct {
	Status     FeedbackStatus `json:"status" validate:"required,oneof=pending in_progress assigned resolved"`
	AssignedTo string         `json:"assignedTo" validate:"max=200"`
}

// SelectFeedbackRequest selects a feedback item in a desk session
type SelectFeedbackRequest struct {
	FeedbackID string `json:"feedbackId" validate:"required,max=64"`
}

// EditDraftRequest replaces the draft text in a desk session
type EditDraftRequest struct {
	Text string `json:"text"`
}

// DeskSaveResponse is returned after a draft has been committed
type DeskSaveResponse struct {
	Session  DeskSessionDTO `json:"session"`
	Feedback FeedbackDTO    `json:"feedback"`
}
