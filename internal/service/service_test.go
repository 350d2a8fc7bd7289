package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/straye-as/project-desk-api/internal/datawarehouse"
	"github.com/straye-as/project-desk-api/internal/domain"
	"github.com/straye-as/project-desk-api/internal/repository"
	"github.com/straye-as/project-desk-api/internal/service"
	"github.com/straye-as/project-desk-api/internal/storage"
	"github.com/straye-as/project-desk-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type services struct {
	projects  *service.ProjectService
	feedback  *service.FeedbackService
	favorites *service.FavoriteService
	dashboard *service.DashboardService
}

func newServices(db *gorm.DB) services {
	logger := zap.NewNop()
	projectRepo := repository.NewProjectRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	return services{
		projects:  service.NewProjectService(projectRepo, favoriteRepo, logger),
		feedback:  service.NewFeedbackService(feedbackRepo, projectRepo, logger),
		favorites: service.NewFavoriteService(favoriteRepo, projectRepo, logger),
		dashboard: service.NewDashboardService(projectRepo, feedbackRepo, favoriteRepo, logger),
	}
}

func TestProjectService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newServices(db).projects
	ctx := context.Background()

	t.Run("clamps progress and generates stakeholder ids", func(t *testing.T) {
		req := &domain.CreateProjectRequest{
			Name:   "海上风电场",
			Type:   domain.ProjectTypeNewEnergy,
			Status: domain.ProjectStatusPlanning,
			// validator rejects this at the handler; the service still bounds it
			Progress: 130,
			Stakeholders: []domain.CreateStakeholderRequest{
				{Name: "李总", Role: "业主"},
				{ID: "s2", Name: "赵工"},
			},
		}
		project, err := svc.Create(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, 100, project.Progress)
		assert.Equal(t, "新能源", project.TypeLabel)
		require.Len(t, project.Stakeholders, 2)
		assert.NotEmpty(t, project.Stakeholders[0].ID)
		assert.False(t, project.IsFavorite)
	})

	t.Run("rejects duplicate stakeholder ids", func(t *testing.T) {
		req := &domain.CreateProjectRequest{
			Name:   "重复",
			Type:   domain.ProjectTypeGrid,
			Status: domain.ProjectStatusPlanning,
			Stakeholders: []domain.CreateStakeholderRequest{
				{ID: "a", Name: "甲"},
				{ID: "a", Name: "乙"},
			},
		}
		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestProjectService_Stakeholders(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newServices(db).projects
	ctx := context.Background()
	project := testutil.CreateTestProject(t, db, "管廊", 10, domain.Stakeholder{ID: "s1", Name: "周工"})

	added, err := svc.AddStakeholder(ctx, project.ID, &domain.CreateStakeholderRequest{ID: "s2", Name: "吴工", Role: "监理"})
	require.NoError(t, err)
	assert.Equal(t, project.ID, added.ProjectID)

	_, err = svc.AddStakeholder(ctx, project.ID, &domain.CreateStakeholderRequest{ID: "s1", Name: "重复"})
	assert.ErrorIs(t, err, service.ErrConflict)

	list, err := svc.ListStakeholders(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.ListStakeholders(ctx, "missing")
	assert.ErrorIs(t, err, service.ErrProjectNotFound)
}

func TestProjectService_UpdateAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := newServices(db)
	ctx := context.Background()
	project := testutil.CreateTestProject(t, db, "旧名称", 10)
	require.NoError(t, s.favorites.Add(ctx, project.ID))

	updated, err := s.projects.Update(ctx, project.ID, &domain.UpdateProjectRequest{
		Name:          "新名称",
		Type:          domain.ProjectTypeMunicipal,
		Status:        domain.ProjectStatusCompleted,
		Progress:      100,
		ContractValue: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, "新名称", updated.Name)
	assert.True(t, updated.IsFavorite)

	require.NoError(t, s.projects.Delete(ctx, project.ID))
	assert.ErrorIs(t, s.projects.Delete(ctx, project.ID), service.ErrProjectNotFound)

	favorites, err := s.favorites.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, favorites)

	_, err = s.projects.GetByID(ctx, project.ID)
	assert.ErrorIs(t, err, service.ErrProjectNotFound)
}

func TestFeedbackService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newServices(db).feedback
	ctx := context.Background()
	project := testutil.CreateTestProject(t, db, "水厂", 50, domain.Stakeholder{ID: "s1", Name: "钱主任", Role: "甲方"})

	t.Run("defaults to pending", func(t *testing.T) {
		fb, err := svc.Create(ctx, &domain.CreateFeedbackRequest{
			ProjectID:     project.ID,
			StakeholderID: "s1",
			Content:       "进度滞后",
			ReceivedDate:  "2024-06-01",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.FeedbackStatusPending, fb.Status)
		assert.Equal(t, "水厂", fb.ProjectName)
		assert.Equal(t, "钱主任", fb.StakeholderName)
		assert.Equal(t, "甲方", fb.StakeholderRole)
	})

	t.Run("fills received date", func(t *testing.T) {
		fb, err := svc.Create(ctx, &domain.CreateFeedbackRequest{
			ProjectID:     project.ID,
			StakeholderID: "s1",
			Content:       "无日期",
		})
		require.NoError(t, err)
		assert.Len(t, fb.ReceivedDate, len("2006-01-02"))
	})

	t.Run("unknown project", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateFeedbackRequest{ProjectID: "nope", StakeholderID: "s1", Content: "x"})
		assert.ErrorIs(t, err, service.ErrProjectNotFound)
	})

	t.Run("stakeholder of another project", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateFeedbackRequest{ProjectID: project.ID, StakeholderID: "s9", Content: "x"})
		assert.ErrorIs(t, err, service.ErrStakeholderNotFound)
	})
}

func TestFeedbackService_ListPendingFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := newServices(db)
	ctx := context.Background()
	project := testutil.CreateTestProject(t, db, "园区", 50, domain.Stakeholder{ID: "s1", Name: "孙工"})

	testutil.CreateTestFeedback(t, db, project.ID, "s1", "已解决的", domain.FeedbackStatusResolved)
	testutil.CreateTestFeedback(t, db, project.ID, "s1", "待处理的", domain.FeedbackStatusPending)
	testutil.CreateTestFeedback(t, db, project.ID, "s1", "处理中的", domain.FeedbackStatusInProgress)
	testutil.CreateTestFeedback(t, db, "deleted-project", "s1", "孤儿", domain.FeedbackStatusPending)

	list, err := s.feedback.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, domain.FeedbackStatusPending, list[0].Status)
	assert.Equal(t, domain.FeedbackStatusPending, list[1].Status)
	assert.NotEqual(t, domain.FeedbackStatusPending, list[2].Status)

	for _, fb := range list {
		if fb.Content == "孤儿" {
			assert.Equal(t, "未知项目", fb.ProjectName)
			assert.Equal(t, "未知客户", fb.StakeholderName)
			assert.False(t, fb.ProjectResolved)
		}
	}
}

func TestFeedbackService_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newServices(db).feedback
	ctx := context.Background()
	project := testutil.CreateTestProject(t, db, "隧道", 50, domain.Stakeholder{ID: "s1", Name: "郑工"})
	fb := testutil.CreateTestFeedback(t, db, project.ID, "s1", "噪音", domain.FeedbackStatusPending)

	updated, err := svc.Update(ctx, fb.ID, &domain.UpdateFeedbackRequest{
		Status:     domain.FeedbackStatusAssigned,
		AssignedTo: "施工队",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.FeedbackStatusAssigned, updated.Status)
	assert.Equal(t, "施工队", updated.AssignedTo)

	_, err = svc.Update(ctx, "missing", &domain.UpdateFeedbackRequest{Status: domain.FeedbackStatusResolved})
	assert.ErrorIs(t, err, service.ErrFeedbackNotFound)
}

func TestFavoriteService(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newServices(db).favorites
	ctx := context.Background()
	first := testutil.CreateTestProject(t, db, "一号", 10)
	second := testutil.CreateTestProject(t, db, "二号", 20)

	require.NoError(t, svc.Add(ctx, second.ID))
	require.NoError(t, svc.Add(ctx, first.ID))
	require.NoError(t, svc.Add(ctx, first.ID))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.True(t, list[0].IsFavorite)

	require.NoError(t, svc.Remove(ctx, first.ID))
	require.NoError(t, svc.Remove(ctx, first.ID))
	assert.ErrorIs(t, svc.Add(ctx, "missing"), service.ErrProjectNotFound)
}

func TestDashboardService_GetMetrics(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := newServices(db)
	ctx := context.Background()

	running := testutil.CreateTestProject(t, db, "在建项目", 60, domain.Stakeholder{ID: "s1", Name: "冯工"})
	testutil.CreateTestProject(t, db, "完工项目", 100)
	testutil.CreateTestFeedback(t, db, running.ID, "s1", "A", domain.FeedbackStatusPending)
	testutil.CreateTestFeedback(t, db, running.ID, "s1", "B", domain.FeedbackStatusResolved)
	require.NoError(t, s.favorites.Add(ctx, running.ID))

	m, err := s.dashboard.GetMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, m.ActiveProjectCount)
	assert.Equal(t, 2, m.TotalProjectCount)
	assert.Equal(t, 1, m.PendingFeedbackCount)
	assert.InDelta(t, 2000000, m.TotalContractValue, 0.01)
	assert.InDelta(t, 25.0, m.ReceivedRatio, 0.0001)
	assert.Len(t, m.ProjectTypeCounts, len(domain.AllProjectTypes()))
	require.Len(t, m.FavoriteProjects, 1)
	assert.Equal(t, running.ID, m.FavoriteProjects[0].ID)
	assert.Len(t, m.FeedbackStream, 2)
	assert.NotEmpty(t, m.GeneratedAt)
}

func TestDashboardService_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	m, err := newServices(db).dashboard.GetMetrics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, m.TotalProjectCount)
	assert.Zero(t, m.ReceivedRatio)
	assert.Empty(t, m.PriorityProjects)
}

type stubPayments struct {
	rows []datawarehouse.ProjectPayment
	err  error
}

func (s stubPayments) GetProjectPayments(ctx context.Context) ([]datawarehouse.ProjectPayment, error) {
	return s.rows, s.err
}

func TestPaymentSyncService_Sync(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	projectRepo := repository.NewProjectRepository(db)
	project := testutil.CreateTestProject(t, db, "同步项目", 30)

	source := stubPayments{rows: []datawarehouse.ProjectPayment{
		{ProjectNumber: project.ProjectNumber, Received: 640000},
		{ProjectNumber: "P-unknown", Received: 1},
		{ProjectNumber: "  ", Received: 1},
	}}
	svc := service.NewPaymentSyncService(source, projectRepo, zap.NewNop())

	result, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Fetched)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 2, result.Unmatched)

	stored, err := projectRepo.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.InDelta(t, 640000, stored.PaymentReceived, 0.01)
}

func TestPaymentSyncService_Unavailable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewPaymentSyncService(nil, repository.NewProjectRepository(db), zap.NewNop())
	assert.False(t, svc.IsAvailable())
	_, err := svc.Sync(context.Background())
	assert.ErrorIs(t, err, service.ErrDataWarehouseUnavailable)

	failing := service.NewPaymentSyncService(stubPayments{err: errors.New("timeout")}, repository.NewProjectRepository(db), zap.NewNop())
	_, err = failing.Sync(context.Background())
	assert.Error(t, err)
}

func TestSnapshotService(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	testutil.CreateTestProject(t, db, "快照项目", 70)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := service.NewSnapshotService(newServices(db).dashboard, store, "metrics", zap.NewNop())

	_, err = svc.Latest(ctx)
	assert.ErrorIs(t, err, service.ErrNotFound)

	key, err := svc.Capture(ctx)
	require.NoError(t, err)
	assert.Contains(t, key, "metrics/")

	latest, err := svc.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, latest.TotalProjectCount)

	disabled := service.NewSnapshotService(newServices(db).dashboard, nil, "", zap.NewNop())
	_, err = disabled.Capture(ctx)
	assert.ErrorIs(t, err, service.ErrSnapshotsUnavailable)
}
