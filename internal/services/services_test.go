package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yukikurage/tracker-api/internal/database"
	apierrors "github.com/yukikurage/tracker-api/internal/errors"
	"github.com/yukikurage/tracker-api/internal/models"
	"github.com/yukikurage/tracker-api/internal/repository"
	"github.com/yukikurage/tracker-api/internal/session"
)

type ServiceTestSuite struct {
	suite.Suite
	db *gorm.DB

	users    repository.UserRepository
	conns    repository.ConnectionRepository
	boards   repository.BoardRepository
	sections repository.SectionRepository
	tasks    repository.TaskRepository
	members  repository.BoardMemberRepository

	auth        *AuthService
	boardSvc    *BoardService
	taskSvc     *TaskService
	timerSvc    *TimerService
	sharingSvc  *SharingService
	connService *ConnectionService

	alice *models.User
	bob   *models.User
	now   time.Time
}

func (s *ServiceTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.Require().NoError(database.Migrate(db))
	s.db = db

	s.users = repository.NewUserRepository(db)
	s.conns = repository.NewConnectionRepository(db)
	s.boards = repository.NewBoardRepository(db)
	s.sections = repository.NewSectionRepository(db)
	s.tasks = repository.NewTaskRepository(db)
	s.members = repository.NewBoardMemberRepository(db)

	s.now = time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return s.now }

	s.auth = NewAuthService(s.users)
	s.boardSvc = NewBoardService(s.boards, s.sections)
	s.taskSvc = NewTaskService(s.tasks, s.boards, s.sections)
	s.taskSvc.now = clock
	s.timerSvc = NewTimerService(s.tasks)
	s.timerSvc.now = clock
	s.sharingSvc = NewSharingService(s.boards, s.members, s.conns)
	s.connService = NewConnectionService(s.users, s.conns)

	s.alice = s.signup("alice")
	s.bob = s.signup("bob")
}

func (s *ServiceTestSuite) TearDownTest() {
	sqlDB, _ := s.db.DB()
	sqlDB.Close()
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func (s *ServiceTestSuite) signup(name string) *models.User {
	user, err := s.auth.Signup(context.Background(), SignupInput{Username: name, Password: "password123"})
	s.Require().NoError(err)
	return user
}

func (s *ServiceTestSuite) as(user *models.User) context.Context {
	return session.WithUserID(context.Background(), user.ID)
}

func (s *ServiceTestSuite) requireKind(err error, kind apierrors.Kind) {
	s.Require().Error(err)
	s.Equal(kind, apierrors.KindOf(err), err.Error())
}

func (s *ServiceTestSuite) connect(a, b *models.User) {
	_, err := s.connService.RequestConnection(s.as(a), ConnectionRequestInput{FriendCode: b.FriendCode})
	s.Require().NoError(err)
	s.Require().NoError(s.connService.AcceptConnection(s.as(b), a.ID))
}

func strPtr(v string) *string { return &v }

func intPtr(v int) *int { return &v }

func freqPtr(f models.RepeatFrequency) *models.RepeatFrequency { return &f }

// Auth

func (s *ServiceTestSuite) TestSignup_DuplicateUsername() {
	_, err := s.auth.Signup(context.Background(), SignupInput{Username: "alice", Password: "password123"})
	s.requireKind(err, apierrors.KindConflict)
}

func (s *ServiceTestSuite) TestSignup_Validation() {
	_, err := s.auth.Signup(context.Background(), SignupInput{Username: "al", Password: "short"})
	s.requireKind(err, apierrors.KindValidation)

	var svcErr *apierrors.Error
	s.Require().True(apierrors.As(err, &svcErr))
	s.Contains(svcErr.Fields, "username")
	s.Contains(svcErr.Fields, "password")
}

func (s *ServiceTestSuite) TestLogin() {
	user, err := s.auth.Login(context.Background(), LoginInput{Username: "alice", Password: "password123"})
	s.Require().NoError(err)
	s.Equal(s.alice.ID, user.ID)

	_, err = s.auth.Login(context.Background(), LoginInput{Username: "alice", Password: "wrong-password"})
	s.True(IsInvalidCredentials(err))

	_, err = s.auth.Login(context.Background(), LoginInput{Username: "nobody", Password: "password123"})
	s.True(IsInvalidCredentials(err))
}

func (s *ServiceTestSuite) TestCurrentUser() {
	user, err := s.auth.CurrentUser(s.as(s.bob))
	s.Require().NoError(err)
	s.Equal("bob", user.Username)
	s.NotEmpty(user.FriendCode)

	_, err = s.auth.CurrentUser(context.Background())
	s.requireKind(err, apierrors.KindUnauthenticated)
}

// Boards

func (s *ServiceTestSuite) TestOperationsRequireSession() {
	ctx := context.Background()

	_, err := s.boardSvc.ListBoards(ctx)
	s.requireKind(err, apierrors.KindUnauthenticated)
	_, err = s.taskSvc.CreateTask(ctx, CreateTaskInput{Title: "x"})
	s.requireKind(err, apierrors.KindUnauthenticated)
	_, err = s.timerSvc.ListActiveTimers(ctx)
	s.requireKind(err, apierrors.KindUnauthenticated)
	err = s.taskSvc.ReorderTasks(ctx, []uint64{1})
	s.requireKind(err, apierrors.KindUnauthenticated)
}

func (s *ServiceTestSuite) TestCreateBoard_ProvisionsSectionsAndOrder() {
	ctx := s.as(s.alice)

	first, err := s.boardSvc.CreateBoard(ctx, CreateBoardInput{Name: "  Groceries  "})
	s.Require().NoError(err)
	s.Equal("Groceries", first.Name)
	s.Require().NotNil(first.DisplayOrder)
	s.Equal(0, *first.DisplayOrder)
	s.Require().Len(first.Sections, 3)
	for i, section := range first.Sections {
		s.Equal(i, section.DisplayOrder)
	}

	second, err := s.boardSvc.CreateBoard(ctx, CreateBoardInput{Name: "Chores"})
	s.Require().NoError(err)
	s.Equal(1, *second.DisplayOrder)

	_, err = s.boardSvc.CreateBoard(ctx, CreateBoardInput{Name: "   "})
	s.requireKind(err, apierrors.KindValidation)
}

func (s *ServiceTestSuite) TestBoardsAreScopedToOwner() {
	board, err := s.boardSvc.CreateBoard(s.as(s.alice), CreateBoardInput{Name: "Private"})
	s.Require().NoError(err)

	_, err = s.boardSvc.GetBoard(s.as(s.bob), board.ID)
	s.requireKind(err, apierrors.KindNotFound)

	_, err = s.boardSvc.UpdateBoard(s.as(s.bob), board.ID, UpdateBoardInput{Name: strPtr("Mine now")})
	s.requireKind(err, apierrors.KindNotFound)

	err = s.boardSvc.DeleteBoard(s.as(s.bob), board.ID)
	s.requireKind(err, apierrors.KindNotFound)

	boards, err := s.boardSvc.ListBoards(s.as(s.bob))
	s.Require().NoError(err)
	s.Empty(boards)
}

func (s *ServiceTestSuite) TestUpdateBoard() {
	ctx := s.as(s.alice)
	board, err := s.boardSvc.CreateBoard(ctx, CreateBoardInput{Name: "Old", Icon: strPtr("cart")})
	s.Require().NoError(err)

	updated, err := s.boardSvc.UpdateBoard(ctx, board.ID, UpdateBoardInput{Name: strPtr("New"), Icon: strPtr("")})
	s.Require().NoError(err)
	s.Equal("New", updated.Name)
	s.Nil(updated.Icon)
}

func (s *ServiceTestSuite) TestReorderBoards_RejectsForeignIDs() {
	mine, err := s.boardSvc.CreateBoard(s.as(s.alice), CreateBoardInput{Name: "A"})
	s.Require().NoError(err)
	theirs, err := s.boardSvc.CreateBoard(s.as(s.bob), CreateBoardInput{Name: "B"})
	s.Require().NoError(err)

	err = s.boardSvc.ReorderBoards(s.as(s.alice), []uint64{theirs.ID, mine.ID})
	s.Require().Error(err)
	var bulk *apierrors.BulkError
	s.Require().True(apierrors.As(err, &bulk))
	s.Equal([]uint64{theirs.ID}, bulk.Failed)

	stored, err := s.boardSvc.GetBoard(s.as(s.alice), mine.ID)
	s.Require().NoError(err)
	s.Equal(0, *stored.DisplayOrder)
}

func (s *ServiceTestSuite) TestSections() {
	ctx := s.as(s.alice)
	board, err := s.boardSvc.CreateBoard(ctx, CreateBoardInput{Name: "Board"})
	s.Require().NoError(err)

	extra, err := s.boardSvc.CreateSection(ctx, board.ID, SectionInput{Name: "Blocked"})
	s.Require().NoError(err)
	s.Equal(3, extra.DisplayOrder)

	renamed, err := s.boardSvc.UpdateSection(ctx, extra.ID, SectionInput{Name: "Waiting"})
	s.Require().NoError(err)
	s.Equal("Waiting", renamed.Name)

	_, err = s.boardSvc.UpdateSection(s.as(s.bob), extra.ID, SectionInput{Name: "Hijack"})
	s.requireKind(err, apierrors.KindNotFound)

	task, err := s.taskSvc.CreateTask(ctx, CreateTaskInput{Title: "stuck", BoardID: &board.ID, SectionID: &extra.ID})
	s.Require().NoError(err)

	s.Require().NoError(s.boardSvc.DeleteSection(ctx, extra.ID))
	detached, err := s.taskSvc.GetTask(ctx, task.ID)
	s.Require().NoError(err)
	s.Nil(detached.SectionID)
	s.Require().NotNil(detached.BoardID)
	s.Equal(board.ID, *detached.BoardID)

	ids := []uint64{board.Sections[2].ID, board.Sections[1].ID, board.Sections[0].ID}
	s.Require().NoError(s.boardSvc.ReorderSections(ctx, board.ID, ids))
	reordered, err := s.boardSvc.GetBoard(ctx, board.ID)
	s.Require().NoError(err)
	s.Equal("Done", reordered.Sections[0].Name)
	s.Equal("To Do", reordered.Sections[2].Name)
}

func (s *ServiceTestSuite) TestEnsureSingletonBoard() {
	ctx := s.as(s.alice)

	board, err := s.boardSvc.EnsureSingletonBoard(ctx, models.SingletonRecipe)
	s.Require().NoError(err)
	s.Equal(models.BoardTypeTemplate, board.BoardType)
	s.Require().NotNil(board.TemplateType)
	s.Equal(models.TemplateRecipe, *board.TemplateType)
	s.Len(board.Sections, 3)

	again, err := s.boardSvc.EnsureSingletonBoard(ctx, models.SingletonRecipe)
	s.Require().NoError(err)
	s.Equal(board.ID, again.ID)
	s.Len(again.Sections, 3)

	other, err := s.boardSvc.EnsureSingletonBoard(s.as(s.bob), models.SingletonRecipe)
	s.Require().NoError(err)
	s.NotEqual(board.ID, other.ID)

	_, err = s.boardSvc.EnsureSingletonBoard(ctx, models.SingletonKind("calendar"))
	s.requireKind(err, apierrors.KindValidation)
}

// Tasks

func (s *ServiceTestSuite) TestCreateTask_Validation() {
	ctx := s.as(s.alice)

	_, err := s.taskSvc.CreateTask(ctx, CreateTaskInput{Title: ""})
	s.requireKind(err, apierrors.KindValidation)

	_, err = s.taskSvc.CreateTask(ctx, CreateTaskInput{Title: "repeat", IsRepeatable: true})
	s.requireKind(err, apierrors.KindValidation)

	_, err = s.taskSvc.CreateTask(ctx, CreateTaskInput{Title: "custom", IsRepeatable: true, RepeatFrequency: freqPtr(models.RepeatCustom)})
	s.requireKind(err, apierrors.KindValidation)

	_, err = s.taskSvc.CreateTask(ctx, CreateTaskInput{Title: "due", DueDate: strPtr("next tuesday")})
	s.requireKind(err, apierrors.KindValidation)

	board, err := s.boardSvc.CreateBoard(ctx, CreateBoardInput{Name: "B"})
	s.Require().NoError(err)
	_, err = s.taskSvc.CreateTask(ctx, CreateTaskInput{Title: "orphan section", SectionID: &board.Sections[0].ID})
	s.requireKind(err, apierrors.KindValidation)
}

func (s *ServiceTestSuite) TestCreateTask_RejectsForeignPlacement() {
	theirs, err := s.boardSvc.CreateBoard(s.as(s.bob), CreateBoardInput{Name: "Bob's"})
	s.Require().NoError(err)
	ctx := s.as(s.alice)

	_, err = s.taskSvc.CreateTask(ctx, CreateTaskInput{Title: "sneaky", BoardID: &theirs.ID})
	s.requireKind(err, apierrors.KindNotFound)

	mine, err := s.boardSvc.CreateBoard(ctx, CreateBoardInput{Name: "Alice's"})
	s.Require().NoError(err)
	_, err = s.taskSvc.CreateTask(ctx, CreateTaskInput{Title: "wrong section", BoardID: &mine.ID, SectionID: &theirs.Sections[0].ID})
	s.requireKind(err, apierrors.KindNotFound)
}

func (s *ServiceTestSuite) TestCreateTask_ValidatesTemplateItemData() {
	ctx := s.as(s.alice)
	board, err := s.boardSvc.EnsureSingletonBoard(ctx, models.SingletonJobTracker)
	s.Require().NoError(err)

	_, err = s.taskSvc.CreateTask(ctx, CreateTaskInput{
		Title:    "Apply",
		BoardID:  &board.ID,
		ItemData: []byte(`{"company": "Acme"}`),
	})
	s.requireKind(err, apierrors.KindValidation)
	var svcErr *apierrors.Error
	s.Require().True(apierrors.As(err, &svcErr))
	s.Contains(svcErr.Fields, "item_data.position")

	task, err := s.taskSvc.CreateTask(ctx, CreateTaskInput{
		Title:    "Apply",
		BoardID:  &board.ID,
		ItemData: []byte(`{"company": "Acme", "position": "Engineer", "stage": "applied", "unknown": 1}`),
	})
	s.Require().NoError(err)
	s.Contains(string(task.ItemData), "Engineer")
	s.NotContains(string(task.ItemData), "unknown")
}

func (s *ServiceTestSuite) TestTaskOwnership() {
	task, err := s.taskSvc.CreateTask(s.as(s.alice), CreateTaskInput{Title: "mine"})
	s.Require().NoError(err)
	ctx := s.as(s.bob)

	_, err = s.taskSvc.GetTask(ctx, task.ID)
	s.requireKind(err, apierrors.KindNotFound)
	_, err = s.taskSvc.UpdateTask(ctx, task.ID, UpdateTaskInput{Title: strPtr("stolen")})
	s.requireKind(err, apierrors.KindNotFound)
	_, err = s.taskSvc.ToggleTaskStatus(ctx, task.ID)
	s.requireKind(err, apierrors.KindNotFound)
	err = s.taskSvc.DeleteTask(ctx, task.ID)
	s.requireKind(err, apierrors.KindNotFound)
	_, err = s.timerSvc.StartTaskTimer(ctx, task.ID, StartTimerInput{})
	s.requireKind(err, apierrors.KindNotFound)

	err = s.taskSvc.ReorderTasks(ctx, []uint64{task.ID})
	var bulk *apierrors.BulkError
	s.Require().True(apierrors.As(err, &bulk))
	s.Equal([]uint64{task.ID}, bulk.Failed)
}

func (s *ServiceTestSuite) TestUpdateTask_StatusTimestamps() {
	ctx := s.as(s.alice)
	task, err := s.taskSvc.CreateTask(ctx, CreateTaskInput{Title: "t", Priority: nil})
	s.Require().NoError(err)

	archived := models.TaskStatusArchived
	updated, err := s.taskSvc.UpdateTask(ctx, task.ID, UpdateTaskInput{Status: &archived})
	s.Require().NoError(err)
	s.Require().NotNil(updated.ArchivedAt)
	s.Nil(updated.CompletedAt)

	visible, _, err := s.taskSvc.ListTasks(ctx, TaskQuery{})
	s.Require().NoError(err)
	s.Empty(visible)

	all, _, err := s.taskSvc.ListTasks(ctx, TaskQuery{IncludeArchived: true})
	s.Require().NoError(err)
	s.Len(all, 1)

	todo := models.TaskStatusTodo
	high := models.PriorityHigh
	updated, err = s.taskSvc.UpdateTask(ctx, task.ID, UpdateTaskInput{Status: &todo, Priority: &high, DueDate: strPtr("2024-02-01")})
	s.Require().NoError(err)
	s.Nil(updated.ArchivedAt)
	s.Require().NotNil(updated.Priority)
	s.Equal(models.PriorityHigh, *updated.Priority)
	s.Require().NotNil(updated.DueDate)

	updated, err = s.taskSvc.UpdateTask(ctx, task.ID, UpdateTaskInput{ClearPriority: true, ClearDueDate: true})
	s.Require().NoError(err)
	s.Nil(updated.Priority)
	s.Nil(updated.DueDate)
}

func (s *ServiceTestSuite) TestUpdateTask_RepeatRulesUseStoredValues() {
	ctx := s.as(s.alice)
	task, err := s.taskSvc.CreateTask(ctx, CreateTaskInput{Title: "t"})
	s.Require().NoError(err)

	yes := true
	_, err = s.taskSvc.UpdateTask(ctx, task.ID, UpdateTaskInput{IsRepeatable: &yes})
	s.requireKind(err, apierrors.KindValidation)

	updated, err := s.taskSvc.UpdateTask(ctx, task.ID, UpdateTaskInput{IsRepeatable: &yes, RepeatFrequency: freqPtr(models.RepeatDaily)})
	s.Require().NoError(err)
	s.True(updated.IsRepeatable)
}

func (s *ServiceTestSuite) TestMoveTask() {
	ctx := s.as(s.alice)
	board, err := s.boardSvc.CreateBoard(ctx, CreateBoardInput{Name: "B"})
	s.Require().NoError(err)
	todo, doing := board.Sections[0].ID, board.Sections[1].ID

	_, err = s.taskSvc.CreateTask(ctx, CreateTaskInput{Title: "already there", BoardID: &board.ID, SectionID: &doing})
	s.Require().NoError(err)
	task, err := s.taskSvc.CreateTask(ctx, CreateTaskInput{Title: "mover", BoardID: &board.ID, SectionID: &todo})
	s.Require().NoError(err)
	s.Equal(0, *task.DisplayOrder)

	moved, err := s.taskSvc.MoveTask(ctx, task.ID, MoveTaskInput{BoardID: &board.ID, SectionID: &doing})
	s.Require().NoError(err)
	s.Equal(doing, *moved.SectionID)
	s.Equal(1, *moved.DisplayOrder)

	inbox, err := s.taskSvc.MoveTask(ctx, task.ID, MoveTaskInput{})
	s.Require().NoError(err)
	s.Nil(inbox.BoardID)
	s.Nil(inbox.SectionID)
	s.Equal(0, *inbox.DisplayOrder)

	_, err = s.taskSvc.MoveTask(ctx, task.ID, MoveTaskInput{SectionID: &todo})
	s.requireKind(err, apierrors.KindValidation)
}

func (s *ServiceTestSuite) TestDeleteTask_DetachesSubtasks() {
	ctx := s.as(s.alice)
	parent, err := s.taskSvc.CreateTask(ctx, CreateTaskInput{Title: "parent"})
	s.Require().NoError(err)
	child, err := s.taskSvc.CreateTask(ctx, CreateTaskInput{Title: "child", ParentID: &parent.ID})
	s.Require().NoError(err)

	s.Require().NoError(s.taskSvc.DeleteTask(ctx, parent.ID))
	err = s.taskSvc.DeleteTask(ctx, parent.ID)
	s.requireKind(err, apierrors.KindNotFound)

	orphan, err := s.taskSvc.GetTask(ctx, child.ID)
	s.Require().NoError(err)
	s.Nil(orphan.ParentID)
}

func (s *ServiceTestSuite) TestCompleteRepeatableTask_InvalidState() {
	ctx := s.as(s.alice)

	plain, err := s.taskSvc.CreateTask(ctx, CreateTaskInput{Title: "once", DueDate: strPtr("2024-01-01")})
	s.Require().NoError(err)
	_, err = s.taskSvc.CompleteRepeatableTask(ctx, plain.ID)
	s.requireKind(err, apierrors.KindInvalidState)

	undated, err := s.taskSvc.CreateTask(ctx, CreateTaskInput{Title: "someday", IsRepeatable: true, RepeatFrequency: freqPtr(models.RepeatDaily)})
	s.Require().NoError(err)
	_, err = s.taskSvc.CompleteRepeatableTask(ctx, undated.ID)
	s.requireKind(err, apierrors.KindInvalidState)
}

func (s *ServiceTestSuite) TestCompleteRepeatableTask_CustomInterval() {
	ctx := s.as(s.alice)
	task, err := s.taskSvc.CreateTask(ctx, CreateTaskInput{
		Title:            "water plants",
		DueDate:          strPtr("2024-01-30T08:00:00Z"),
		IsRepeatable:     true,
		RepeatFrequency:  freqPtr(models.RepeatCustom),
		RepeatCustomDays: intPtr(3),
	})
	s.Require().NoError(err)

	next, err := s.taskSvc.CompleteRepeatableTask(ctx, task.ID)
	s.Require().NoError(err)
	s.True(next.DueDate.Equal(time.Date(2024, 2, 2, 8, 0, 0, 0, time.UTC)), next.DueDate.String())
}

func (s *ServiceTestSuite) TestGroupTasks() {
	ctx := s.as(s.alice)
	board, err := s.boardSvc.CreateBoard(ctx, CreateBoardInput{Name: "B"})
	s.Require().NoError(err)
	_, err = s.taskSvc.CreateTask(ctx, CreateTaskInput{Title: "inbox"})
	s.Require().NoError(err)
	_, err = s.taskSvc.CreateTask(ctx, CreateTaskInput{Title: "on board", BoardID: &board.ID, DueDate: strPtr("2024-01-01")})
	s.Require().NoError(err)

	byBoard, err := s.taskSvc.GroupTasks(ctx, TaskQuery{}, GroupByBoard)
	s.Require().NoError(err)
	s.Len(byBoard.Board, 2)
	s.Len(byBoard.Board["inbox"], 1)

	byDate, err := s.taskSvc.GroupTasks(ctx, TaskQuery{}, GroupByDate)
	s.Require().NoError(err)
	s.NotEmpty(byDate.Date)

	_, err = s.taskSvc.GroupTasks(ctx, TaskQuery{}, "color")
	s.requireKind(err, apierrors.KindValidation)

	_, _, err = s.taskSvc.ListTasks(ctx, TaskQuery{Sort: "random"})
	s.requireKind(err, apierrors.KindValidation)
}

func (s *ServiceTestSuite) TestListTasks_Pagination() {
	ctx := s.as(s.alice)
	for _, title := range []string{"a", "b", "c"} {
		_, err := s.taskSvc.CreateTask(ctx, CreateTaskInput{Title: title})
		s.Require().NoError(err)
	}

	page, total, err := s.taskSvc.ListTasks(ctx, TaskQuery{Page: 2, Limit: 2})
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Require().Len(page, 1)
	s.Equal("c", page[0].Title)
}

// Timers

func (s *ServiceTestSuite) TestTimerLifecycle_TouchesOnlyTimerFields() {
	ctx := s.as(s.alice)
	task, err := s.taskSvc.CreateTask(ctx, CreateTaskInput{Title: "focus", Description: "deep work"})
	s.Require().NoError(err)

	started, err := s.timerSvc.StartTaskTimer(ctx, task.ID, StartTimerInput{DurationSeconds: intPtr(1500)})
	s.Require().NoError(err)
	s.True(started.TimerRunning())
	s.Equal(1500, *started.TimerDurationSeconds)
	s.Equal("focus", started.Title)
	s.Equal("deep work", started.Description)
	s.Equal(models.TaskStatusTodo, started.Status)
	s.Equal(*task.DisplayOrder, *started.DisplayOrder)

	active, err := s.timerSvc.ListActiveTimers(ctx)
	s.Require().NoError(err)
	s.Len(active, 1)

	renamed, err := s.taskSvc.UpdateTask(ctx, task.ID, UpdateTaskInput{Title: strPtr("focus block")})
	s.Require().NoError(err)
	s.True(renamed.TimerRunning())

	completed, err := s.timerSvc.CompleteTaskTimer(ctx, task.ID)
	s.Require().NoError(err)
	s.False(completed.TimerRunning())
	s.NotNil(completed.TimerCompletedAt)
	s.Equal("focus block", completed.Title)

	_, err = s.timerSvc.CompleteTaskTimer(ctx, task.ID)
	s.requireKind(err, apierrors.KindInvalidState)

	reset, err := s.timerSvc.ResetTaskTimer(ctx, task.ID)
	s.Require().NoError(err)
	s.Nil(reset.TimerStartedAt)
	s.Nil(reset.TimerCompletedAt)
	s.Equal(1500, *reset.TimerDurationSeconds)

	active, err = s.timerSvc.ListActiveTimers(ctx)
	s.Require().NoError(err)
	s.Empty(active)
}

func (s *ServiceTestSuite) TestStartTaskTimer_ResumesFromGivenStart() {
	ctx := s.as(s.alice)
	task, err := s.taskSvc.CreateTask(ctx, CreateTaskInput{Title: "resume"})
	s.Require().NoError(err)

	started, err := s.timerSvc.StartTaskTimer(ctx, task.ID, StartTimerInput{StartedAt: strPtr("2024-01-03T11:50:00Z")})
	s.Require().NoError(err)
	s.True(started.TimerStartedAt.Equal(time.Date(2024, 1, 3, 11, 50, 0, 0, time.UTC)))

	_, err = s.timerSvc.StartTaskTimer(ctx, task.ID, StartTimerInput{DurationSeconds: intPtr(0)})
	s.requireKind(err, apierrors.KindValidation)
}

// Connections and sharing

func (s *ServiceTestSuite) TestConnectionFlow() {
	req, err := s.connService.RequestConnection(s.as(s.alice), ConnectionRequestInput{FriendCode: "  " + s.bob.FriendCode + " "})
	s.Require().NoError(err)
	s.Equal(models.ConnectionPending, req.Status)
	s.Equal("bob", req.Friend.Username)

	_, err = s.connService.RequestConnection(s.as(s.alice), ConnectionRequestInput{FriendCode: s.bob.FriendCode})
	s.requireKind(err, apierrors.KindConflict)

	list, err := s.connService.ListConnections(s.as(s.bob))
	s.Require().NoError(err)
	s.Require().Len(list.Incoming, 1)
	s.Empty(list.Friends)

	// Requesting back accepts the pending request.
	back, err := s.connService.RequestConnection(s.as(s.bob), ConnectionRequestInput{FriendCode: s.alice.FriendCode})
	s.Require().NoError(err)
	s.Equal(models.ConnectionAccepted, back.Status)

	list, err = s.connService.ListConnections(s.as(s.alice))
	s.Require().NoError(err)
	s.Require().Len(list.Friends, 1)
	s.Equal(s.bob.ID, list.Friends[0].FriendID)

	s.Require().NoError(s.connService.RemoveConnection(s.as(s.bob), s.alice.ID))
	err = s.connService.RemoveConnection(s.as(s.alice), s.bob.ID)
	s.requireKind(err, apierrors.KindNotFound)
}

func (s *ServiceTestSuite) TestRequestConnection_RejectsBadCodes() {
	ctx := s.as(s.alice)

	_, err := s.connService.RequestConnection(ctx, ConnectionRequestInput{FriendCode: "not a code"})
	s.requireKind(err, apierrors.KindValidation)

	_, err = s.connService.RequestConnection(ctx, ConnectionRequestInput{FriendCode: "0000-0000-0000"})
	s.requireKind(err, apierrors.KindNotFound)

	_, err = s.connService.RequestConnection(ctx, ConnectionRequestInput{FriendCode: s.alice.FriendCode})
	s.requireKind(err, apierrors.KindValidation)

	err = s.connService.AcceptConnection(ctx, s.bob.ID)
	s.requireKind(err, apierrors.KindNotFound)
}

func (s *ServiceTestSuite) TestShareBoard_RequiresConnection() {
	board, err := s.boardSvc.CreateBoard(s.as(s.alice), CreateBoardInput{Name: "Shared"})
	s.Require().NoError(err)

	_, err = s.sharingSvc.ShareBoard(s.as(s.alice), board.ID, ShareBoardInput{UserIDs: []uint64{s.bob.ID}, Role: models.BoardRoleViewer})
	s.requireKind(err, apierrors.KindForbidden)

	_, err = s.sharingSvc.ShareBoard(s.as(s.alice), board.ID, ShareBoardInput{UserIDs: []uint64{s.alice.ID}, Role: models.BoardRoleViewer})
	s.requireKind(err, apierrors.KindValidation)

	_, err = s.sharingSvc.ShareBoard(s.as(s.alice), board.ID, ShareBoardInput{UserIDs: []uint64{s.bob.ID}, Role: "owner"})
	s.requireKind(err, apierrors.KindValidation)
}

func (s *ServiceTestSuite) TestShareBoard_GrantsReadAccess() {
	s.connect(s.alice, s.bob)
	ctx := s.as(s.alice)
	board, err := s.boardSvc.CreateBoard(ctx, CreateBoardInput{Name: "Trip"})
	s.Require().NoError(err)
	_, err = s.taskSvc.CreateTask(ctx, CreateTaskInput{Title: "Book hotel", BoardID: &board.ID})
	s.Require().NoError(err)

	members, err := s.sharingSvc.ShareBoard(ctx, board.ID, ShareBoardInput{UserIDs: []uint64{s.bob.ID, s.bob.ID}, Role: models.BoardRoleViewer})
	s.Require().NoError(err)
	s.Require().Len(members, 1)
	s.Equal(models.BoardRoleViewer, members[0].Role)

	members, err = s.sharingSvc.ShareBoard(ctx, board.ID, ShareBoardInput{UserIDs: []uint64{s.bob.ID}, Role: models.BoardRoleEditor})
	s.Require().NoError(err)
	s.Require().Len(members, 1)
	s.Equal(models.BoardRoleEditor, members[0].Role)

	bob := s.as(s.bob)
	shared, err := s.boardSvc.ListSharedBoards(bob)
	s.Require().NoError(err)
	s.Require().Len(shared, 1)
	s.Equal(board.ID, shared[0].ID)

	got, err := s.boardSvc.GetBoard(bob, board.ID)
	s.Require().NoError(err)
	s.Equal("Trip", got.Name)

	tasks, _, err := s.taskSvc.ListTasks(bob, TaskQuery{BoardID: &board.ID})
	s.Require().NoError(err)
	s.Require().Len(tasks, 1)
	s.Equal("Book hotel", tasks[0].Title)

	listed, err := s.sharingSvc.ListBoardMembers(bob, board.ID)
	s.Require().NoError(err)
	s.Len(listed, 1)

	// Writes stay with the owner.
	_, err = s.boardSvc.UpdateBoard(bob, board.ID, UpdateBoardInput{Name: strPtr("Bob's trip")})
	s.requireKind(err, apierrors.KindNotFound)

	s.Require().NoError(s.sharingSvc.UnshareBoard(ctx, board.ID, s.bob.ID))
	err = s.sharingSvc.UnshareBoard(ctx, board.ID, s.bob.ID)
	s.requireKind(err, apierrors.KindNotFound)

	_, err = s.boardSvc.GetBoard(bob, board.ID)
	s.requireKind(err, apierrors.KindNotFound)
}

// End to end

func (s *ServiceTestSuite) TestGroceriesScenario() {
	ctx := s.as(s.alice)

	board, err := s.boardSvc.CreateBoard(ctx, CreateBoardInput{Name: "Groceries"})
	s.Require().NoError(err)
	s.Require().Len(board.Sections, 3)
	for i, section := range board.Sections {
		s.Equal(i, section.DisplayOrder)
	}

	milk, err := s.taskSvc.CreateTask(ctx, CreateTaskInput{Title: "Milk", BoardID: &board.ID})
	s.Require().NoError(err)
	eggs, err := s.taskSvc.CreateTask(ctx, CreateTaskInput{Title: "Eggs", BoardID: &board.ID})
	s.Require().NoError(err)
	s.Nil(milk.SectionID)
	s.Nil(eggs.SectionID)
	s.Equal(0, *milk.DisplayOrder)
	s.Equal(1, *eggs.DisplayOrder)

	// A sectioned task starts its own order scope.
	sectioned, err := s.taskSvc.CreateTask(ctx, CreateTaskInput{Title: "Bread", BoardID: &board.ID, SectionID: &board.Sections[0].ID})
	s.Require().NoError(err)
	s.Equal(0, *sectioned.DisplayOrder)

	done, err := s.taskSvc.ToggleTaskStatus(ctx, milk.ID)
	s.Require().NoError(err)
	s.Equal(models.TaskStatusDone, done.Status)
	s.NotNil(done.CompletedAt)

	undone, err := s.taskSvc.ToggleTaskStatus(ctx, milk.ID)
	s.Require().NoError(err)
	s.Equal(models.TaskStatusTodo, undone.Status)
	s.Nil(undone.CompletedAt)

	s.Require().NoError(s.taskSvc.ReorderTasks(ctx, []uint64{eggs.ID, milk.ID}))
	reloadedEggs, err := s.taskSvc.GetTask(ctx, eggs.ID)
	s.Require().NoError(err)
	reloadedMilk, err := s.taskSvc.GetTask(ctx, milk.ID)
	s.Require().NoError(err)
	s.Equal(0, *reloadedEggs.DisplayOrder)
	s.Equal(1, *reloadedMilk.DisplayOrder)

	weekly, err := s.taskSvc.CreateTask(ctx, CreateTaskInput{
		Title:           "Restock pantry",
		BoardID:         &board.ID,
		DueDate:         strPtr("2024-01-01"),
		IsRepeatable:    true,
		RepeatFrequency: freqPtr(models.RepeatWeekly),
	})
	s.Require().NoError(err)

	rescheduled, err := s.taskSvc.CompleteRepeatableTask(ctx, weekly.ID)
	s.Require().NoError(err)
	s.Equal(models.TaskStatusTodo, rescheduled.Status)
	s.Require().NotNil(rescheduled.DueDate)
	s.Equal("2024-01-08", rescheduled.DueDate.UTC().Format("2006-01-02"))
	s.Require().NotNil(rescheduled.LastCompletedAt)
	s.Nil(rescheduled.CompletedAt)

	first, err := s.boardSvc.EnsureSingletonBoard(ctx, models.SingletonJobTracker)
	s.Require().NoError(err)
	second, err := s.boardSvc.EnsureSingletonBoard(ctx, models.SingletonJobTracker)
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)
	s.Len(second.Sections, 3)
}

func (s *ServiceTestSuite) TestReorderRejectsDuplicateIDs() {
	ctx := s.as(s.alice)

	board, err := s.boardSvc.CreateBoard(ctx, CreateBoardInput{Name: "Groceries"})
	s.Require().NoError(err)
	milk, err := s.taskSvc.CreateTask(ctx, CreateTaskInput{Title: "Milk", BoardID: &board.ID})
	s.Require().NoError(err)
	eggs, err := s.taskSvc.CreateTask(ctx, CreateTaskInput{Title: "Eggs", BoardID: &board.ID})
	s.Require().NoError(err)

	err = s.taskSvc.ReorderTasks(ctx, []uint64{eggs.ID, milk.ID, eggs.ID})
	s.requireKind(err, apierrors.KindValidation)
	var svcErr *apierrors.Error
	s.Require().True(apierrors.As(err, &svcErr))
	s.Contains(svcErr.Fields, "ids")

	reloaded, err := s.taskSvc.GetTask(ctx, milk.ID)
	s.Require().NoError(err)
	s.Equal(0, *reloaded.DisplayOrder)

	s.requireKind(s.boardSvc.ReorderBoards(ctx, []uint64{board.ID, board.ID}), apierrors.KindValidation)
	s.requireKind(s.boardSvc.ReorderSections(ctx, board.ID, []uint64{board.Sections[0].ID, board.Sections[0].ID}), apierrors.KindValidation)
}
