package service_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/solicitudes-service/internal/domain"
	"github.com/spec-kit/solicitudes-service/internal/events"
	"github.com/spec-kit/solicitudes-service/internal/repository"
	"github.com/spec-kit/solicitudes-service/internal/service"
	apperrors "github.com/spec-kit/solicitudes-service/pkg/util"
)

// fakeRequestRepo is an in-memory implementation of repository.RequestRepository.
type fakeRequestRepo struct {
	mu     sync.Mutex
	nextID int64
	clock  time.Time
	rows   map[int64]*domain.Request
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		rows:  make(map[int64]*domain.Request),
	}
}

func (r *fakeRequestRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *fakeRequestRepo) Create(_ context.Context, req *domain.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	req.ID = r.nextID
	now := r.tick()
	req.CreatedAt = now
	req.UpdatedAt = now
	clone := *req
	r.rows[req.ID] = &clone
	return nil
}

func (r *fakeRequestRepo) GetByID(_ context.Context, id int64) (*domain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *row
	return &clone, nil
}

func (r *fakeRequestRepo) ListAll(_ context.Context) ([]domain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.Request, 0, len(r.rows))
	for _, row := range r.rows {
		result = append(result, *row)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *fakeRequestRepo) ListByCreator(ctx context.Context, username string) ([]domain.Request, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]domain.Request, 0, len(all))
	for _, row := range all {
		if row.CreatedBy == username {
			result = append(result, row)
		}
	}
	return result, nil
}

func (r *fakeRequestRepo) Apply(_ context.Context, id int64, update repository.RequestUpdate, updatedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if update.RequestNumber != nil {
		row.RequestNumber = update.RequestNumber
	}
	if update.OrderNumber != nil {
		row.OrderNumber = update.OrderNumber
	}
	if update.RequestStatus != nil {
		row.RequestStatus = *update.RequestStatus
	}
	if update.OrderStatus != nil {
		row.OrderStatus = *update.OrderStatus
	}
	row.UpdatedBy = updatedBy
	row.UpdatedAt = r.tick()
	return nil
}

func (r *fakeRequestRepo) RequestNumberInUse(_ context.Context, number string, excludeID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ID != excludeID && row.RequestNumber != nil && *row.RequestNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRequestRepo) OrderNumberInUse(_ context.Context, number string, excludeID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ID != excludeID && row.OrderNumber != nil && *row.OrderNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRequestRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.rows, id)
	return nil
}

var (
	userActor  = service.Actor{Username: "usuario1", Role: domain.RoleUser}
	otherActor = service.Actor{Username: "usuario2", Role: domain.RoleUser}
	adminActor = service.Actor{Username: "admin", Role: domain.RoleAdmin}
)

func newRequestService(repo repository.RequestRepository) *service.RequestService {
	return service.NewRequestService(service.RequestDependencies{
		RequestRepo: repo,
		Dispatcher:  events.NewInMemoryDispatcher(),
	})
}

func createRequest(t *testing.T, svc *service.RequestService, actor service.Actor) *domain.Request {
	t.Helper()
	req, err := svc.Create(context.Background(), actor, service.RequestCreateInput{
		Employee: "Juan Perez",
		Type:     domain.RequestTypeExam,
	})
	require.NoError(t, err)
	return req
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	return domainErr.Code
}

func TestCreateDefaults(t *testing.T) {
	repo := newFakeRequestRepo()
	svc := newRequestService(repo)

	req := createRequest(t, svc, userActor)

	assert.Equal(t, int64(1), req.ID)
	assert.Equal(t, domain.StatusPending, req.RequestStatus)
	assert.Equal(t, domain.StatusPending, req.OrderStatus)
	assert.Nil(t, req.RequestNumber)
	assert.Nil(t, req.OrderNumber)
	assert.Equal(t, "usuario1", req.CreatedBy)
	assert.Equal(t, "usuario1", req.UpdatedBy)
}

func TestCreateValidation(t *testing.T) {
	svc := newRequestService(newFakeRequestRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, userActor, service.RequestCreateInput{Employee: "Jo", Type: domain.RequestTypeExam})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	_, err = svc.Create(ctx, userActor, service.RequestCreateInput{Employee: "Juan Perez", Type: "Vacaciones"})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestCreateWithRequestNumberConflict(t *testing.T) {
	repo := newFakeRequestRepo()
	svc := newRequestService(repo)
	ctx := context.Background()

	number := "SOL-001"
	_, err := svc.Create(ctx, userActor, service.RequestCreateInput{
		Employee:      "Juan Perez",
		Type:          domain.RequestTypeExam,
		RequestNumber: &number,
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, userActor, service.RequestCreateInput{
		Employee:      "Maria Lopez",
		Type:          domain.RequestTypeCourses,
		RequestNumber: &number,
	})
	assert.Equal(t, "CONFLICT", domainCode(t, err))
}

func TestAssignRequestNumberConflictLeavesRecordUnchanged(t *testing.T) {
	repo := newFakeRequestRepo()
	svc := newRequestService(repo)
	ctx := context.Background()

	first := createRequest(t, svc, userActor)
	second := createRequest(t, svc, userActor)

	require.NoError(t, svc.AssignRequestNumber(ctx, userActor, second.ID, "SOL-100"))

	err := svc.AssignRequestNumber(ctx, userActor, first.ID, "SOL-100")
	assert.Equal(t, "CONFLICT", domainCode(t, err))

	got, err := svc.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RequestNumber)
}

func TestNumberNamespacesAreIndependent(t *testing.T) {
	repo := newFakeRequestRepo()
	svc := newRequestService(repo)
	ctx := context.Background()

	req := createRequest(t, svc, userActor)

	// the same string may serve as solicitud number on one record and orden
	// number on another
	require.NoError(t, svc.AssignRequestNumber(ctx, userActor, req.ID, "N-42"))
	other := createRequest(t, svc, userActor)
	require.NoError(t, svc.AssignOrderNumber(ctx, userActor, other.ID, "N-42"))
}

func TestAssignNumberIdempotent(t *testing.T) {
	repo := newFakeRequestRepo()
	svc := newRequestService(repo)
	ctx := context.Background()

	req := createRequest(t, svc, userActor)

	require.NoError(t, svc.AssignRequestNumber(ctx, userActor, req.ID, "SOL-7"))
	require.NoError(t, svc.AssignRequestNumber(ctx, userActor, req.ID, "SOL-7"))

	got, err := svc.GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RequestNumber)
	assert.Equal(t, "SOL-7", *got.RequestNumber)
}

func TestAssignNumberValidation(t *testing.T) {
	repo := newFakeRequestRepo()
	svc := newRequestService(repo)
	ctx := context.Background()

	req := createRequest(t, svc, userActor)

	err := svc.AssignRequestNumber(ctx, userActor, req.ID, "   ")
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	long := make([]byte, 51)
	for i := range long {
		long[i] = 'x'
	}
	err = svc.AssignOrderNumber(ctx, userActor, req.ID, string(long))
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	err = svc.AssignRequestNumber(ctx, userActor, 999, "SOL-1")
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestAssignNumberOwnerOrAdmin(t *testing.T) {
	repo := newFakeRequestRepo()
	svc := newRequestService(repo)
	ctx := context.Background()

	req := createRequest(t, svc, userActor)

	err := svc.AssignRequestNumber(ctx, otherActor, req.ID, "SOL-1")
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))

	// admins may number records they did not create
	require.NoError(t, svc.AssignRequestNumber(ctx, adminActor, req.ID, "SOL-1"))

	got, err := svc.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", got.UpdatedBy)
}

func TestChangeStatusPartialUpdate(t *testing.T) {
	repo := newFakeRequestRepo()
	svc := newRequestService(repo)
	ctx := context.Background()

	req := createRequest(t, svc, userActor)

	approved := domain.StatusApproved
	require.NoError(t, svc.ChangeStatus(ctx, adminActor, req.ID, service.StatusChangeInput{
		OrderStatus: &approved,
	}))

	got, err := svc.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.RequestStatus)
	assert.Equal(t, domain.StatusApproved, got.OrderStatus)

	voided := domain.StatusVoided
	require.NoError(t, svc.ChangeStatus(ctx, adminActor, req.ID, service.StatusChangeInput{
		RequestStatus: &voided,
	}))

	got, err = svc.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusVoided, got.RequestStatus)
	assert.Equal(t, domain.StatusApproved, got.OrderStatus)
}

func TestChangeStatusForbiddenLeavesRecordUnchanged(t *testing.T) {
	repo := newFakeRequestRepo()
	svc := newRequestService(repo)
	ctx := context.Background()

	req := createRequest(t, svc, userActor)

	approved := domain.StatusApproved
	err := svc.ChangeStatus(ctx, userActor, req.ID, service.StatusChangeInput{OrderStatus: &approved})
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))

	got, err := svc.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.OrderStatus)
	assert.Equal(t, "usuario1", got.UpdatedBy)
}

func TestChangeStatusValidation(t *testing.T) {
	repo := newFakeRequestRepo()
	svc := newRequestService(repo)
	ctx := context.Background()

	req := createRequest(t, svc, userActor)

	err := svc.ChangeStatus(ctx, adminActor, req.ID, service.StatusChangeInput{})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	bogus := domain.Status("Archivada")
	err = svc.ChangeStatus(ctx, adminActor, req.ID, service.StatusChangeInput{RequestStatus: &bogus})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	approved := domain.StatusApproved
	err = svc.ChangeStatus(ctx, adminActor, 999, service.StatusChangeInput{OrderStatus: &approved})
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestStatusTransitionsAreUnconstrained(t *testing.T) {
	repo := newFakeRequestRepo()
	svc := newRequestService(repo)
	ctx := context.Background()

	req := createRequest(t, svc, userActor)

	approved := domain.StatusApproved
	pending := domain.StatusPending
	require.NoError(t, svc.ChangeStatus(ctx, adminActor, req.ID, service.StatusChangeInput{OrderStatus: &approved}))
	require.NoError(t, svc.ChangeStatus(ctx, adminActor, req.ID, service.StatusChangeInput{OrderStatus: &pending}))

	got, err := svc.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.OrderStatus)
}

func TestDelete(t *testing.T) {
	repo := newFakeRequestRepo()
	svc := newRequestService(repo)
	ctx := context.Background()

	req := createRequest(t, svc, userActor)

	err := svc.Delete(ctx, userActor, req.ID)
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))

	require.NoError(t, svc.Delete(ctx, adminActor, req.ID))

	_, err = svc.GetByID(ctx, req.ID)
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))

	err = svc.Delete(ctx, adminActor, req.ID)
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestReportRequiresApprovedOrder(t *testing.T) {
	repo := newFakeRequestRepo()
	svc := newRequestService(repo)
	ctx := context.Background()

	req := createRequest(t, svc, userActor)

	_, err := svc.Report(ctx, req.ID)
	assert.Equal(t, "PRECONDITION_FAILED", domainCode(t, err))

	approved := domain.StatusApproved
	require.NoError(t, svc.ChangeStatus(ctx, adminActor, req.ID, service.StatusChangeInput{OrderStatus: &approved}))

	report, err := svc.Report(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, report.ID)

	// regressing the orden makes the report unavailable again
	pending := domain.StatusPending
	require.NoError(t, svc.ChangeStatus(ctx, adminActor, req.ID, service.StatusChangeInput{OrderStatus: &pending}))

	_, err = svc.Report(ctx, req.ID)
	assert.Equal(t, "PRECONDITION_FAILED", domainCode(t, err))

	_, err = svc.Report(ctx, 999)
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestListOrderingAndFiltering(t *testing.T) {
	repo := newFakeRequestRepo()
	svc := newRequestService(repo)
	ctx := context.Background()

	first := createRequest(t, svc, userActor)
	second := createRequest(t, svc, otherActor)
	third := createRequest(t, svc, userActor)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, third.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)
	assert.Equal(t, first.ID, all[2].ID)

	mine, err := svc.ListByCreator(ctx, "usuario1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, third.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	none, err := svc.ListByCreator(ctx, "nadie")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLifecycleScenario(t *testing.T) {
	repo := newFakeRequestRepo()
	svc := newRequestService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, userActor, service.RequestCreateInput{
		Employee: "Juan Perez",
		Type:     domain.RequestTypeExam,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, domain.StatusPending, created.RequestStatus)
	assert.Equal(t, domain.StatusPending, created.OrderStatus)
	assert.Nil(t, created.RequestNumber)
	assert.Nil(t, created.OrderNumber)
	assert.Equal(t, "usuario1", created.CreatedBy)

	approved := domain.StatusApproved
	require.NoError(t, svc.ChangeStatus(ctx, adminActor, created.ID, service.StatusChangeInput{
		OrderStatus: &approved,
	}))

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, got.OrderStatus)
	assert.Equal(t, domain.StatusPending, got.RequestStatus)

	report, err := svc.Report(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, report.ID)

	second := createRequest(t, svc, userActor)
	require.NoError(t, svc.AssignOrderNumber(ctx, userActor, second.ID, "ORD-55"))

	err = svc.AssignOrderNumber(ctx, userActor, created.ID, "ORD-55")
	assert.Equal(t, "CONFLICT", domainCode(t, err))

	got, err = svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.OrderNumber)
}
