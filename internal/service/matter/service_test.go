package matter

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"testing"

	"github.com/google/uuid"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
	"github.com/heartmarshall/matterdesk-backend/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockMatterRepo struct {
	ListByUserFunc func(ctx context.Context, userID uuid.UUID) ([]domain.Matter, error)
	CreateFunc     func(ctx context.Context, m *domain.Matter) (*domain.Matter, error)
	DeleteFunc     func(ctx context.Context, userID, id uuid.UUID) error
}

func (m *mockMatterRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Matter, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockMatterRepo) Create(ctx context.Context, mt *domain.Matter) (*domain.Matter, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, mt)
	}
	return mt, nil
}

func (m *mockMatterRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, id)
	}
	return nil
}

type mockCountDeleter struct {
	DeleteByMatterFunc func(ctx context.Context, matterID uuid.UUID) (int, error)
}

func (m *mockCountDeleter) DeleteByMatter(ctx context.Context, matterID uuid.UUID) (int, error) {
	if m.DeleteByMatterFunc != nil {
		return m.DeleteByMatterFunc(ctx, matterID)
	}
	return 0, nil
}

type mockAttachmentRepo struct {
	DeleteByMatterFunc func(ctx context.Context, matterID uuid.UUID) ([]string, error)
}

func (m *mockAttachmentRepo) DeleteByMatter(ctx context.Context, matterID uuid.UUID) ([]string, error) {
	if m.DeleteByMatterFunc != nil {
		return m.DeleteByMatterFunc(ctx, matterID)
	}
	return nil, nil
}

type mockBlobStore struct {
	DeleteFunc func(ctx context.Context, key string) error
}

func (m *mockBlobStore) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	return nil
}

type mockGuard struct {
	MatterFunc func(ctx context.Context, id uuid.UUID) (*domain.Matter, error)
}

func (m *mockGuard) Matter(ctx context.Context, id uuid.UUID) (*domain.Matter, error) {
	if m.MatterFunc != nil {
		return m.MatterFunc(ctx, id)
	}
	return nil, domain.ErrForbidden
}

type mockTxManager struct {
	RunInTxFunc func(ctx context.Context, fn func(context.Context) error) error
}

func (m *mockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.RunInTxFunc != nil {
		return m.RunInTxFunc(ctx, fn)
	}
	return fn(ctx)
}

type testDeps struct {
	matters     *mockMatterRepo
	events      *mockCountDeleter
	attachments *mockAttachmentRepo
	outbox      *mockCountDeleter
	blobs       *mockBlobStore
	guard       *mockGuard
	tx          *mockTxManager
}

func newTestService(t *testing.T) (*Service, *testDeps) {
	t.Helper()
	d := &testDeps{
		matters:     &mockMatterRepo{},
		events:      &mockCountDeleter{},
		attachments: &mockAttachmentRepo{},
		outbox:      &mockCountDeleter{},
		blobs:       &mockBlobStore{},
		guard:       &mockGuard{},
		tx:          &mockTxManager{},
	}
	svc := &Service{
		log:         slog.Default(),
		matters:     d.matters,
		events:      d.events,
		attachments: d.attachments,
		outbox:      d.outbox,
		blobs:       d.blobs,
		guard:       d.guard,
		tx:          d.tx,
	}
	return svc, d
}

func ptr[T any](v T) *T { return &v }

func validInput() CreateInput {
	return CreateInput{
		Title:    "  Rinnovo contratto Alfa  ",
		Type:     "contract",
		Status:   domain.MatterStatusActive,
		Priority: domain.MatterPriorityHigh,
		Tags:     []string{"legal", " legal ", "q3"},
	}
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestCreate_Success(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	userID := uuid.New()
	ctx := ctxutil.WithUserID(context.Background(), userID)

	input := validInput()
	input.Counterparty = ptr("  ")
	input.InternalNotes = ptr(" note ")

	m, err := svc.Create(ctx, input)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if m.UserID != userID || m.ID == uuid.Nil {
		t.Errorf("owner/id not set: %+v", m)
	}
	if m.Title != "Rinnovo contratto Alfa" {
		t.Errorf("title = %q", m.Title)
	}
	if !slices.Equal(m.Tags, []string{"legal", "q3"}) {
		t.Errorf("tags = %v", m.Tags)
	}
	if m.InternalNotes == nil || *m.InternalNotes != "note" {
		t.Errorf("notes = %v", m.InternalNotes)
	}
	if m.CreatedAt.IsZero() || !m.CreatedAt.Equal(m.UpdatedAt) {
		t.Errorf("timestamps = %v / %v", m.CreatedAt, m.UpdatedAt)
	}
}

func TestCreate_CounterpartyBlankRejected(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := ctxutil.WithUserID(context.Background(), uuid.New())

	input := validInput()
	input.Counterparty = ptr("")

	_, err := svc.Create(ctx, input)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Errors[0].Field != "counterparty" {
		t.Fatalf("err = %v, want counterparty validation error", err)
	}
}

func TestCreate_Unauthenticated(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), validInput())
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*CreateInput)
		field  string
	}{
		{"blank title", func(i *CreateInput) { i.Title = "   " }, "title"},
		{"missing type", func(i *CreateInput) { i.Type = "" }, "type"},
		{"unknown status", func(i *CreateInput) { i.Status = "archived" }, "status"},
		{"unknown priority", func(i *CreateInput) { i.Priority = "urgent" }, "priority"},
		{"empty tag", func(i *CreateInput) { i.Tags = []string{"ok", ""} }, "tags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, d := newTestService(t)
			d.matters.CreateFunc = func(context.Context, *domain.Matter) (*domain.Matter, error) {
				t.Error("repository must not be called")
				return nil, nil
			}
			ctx := ctxutil.WithUserID(context.Background(), uuid.New())

			input := validInput()
			tt.modify(&input)
			_, err := svc.Create(ctx, input)

			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if verr.Errors[0].Field != tt.field {
				t.Errorf("field = %q, want %q", verr.Errors[0].Field, tt.field)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// List / Get
// ---------------------------------------------------------------------------

func TestList_AnonymousIsEmpty(t *testing.T) {
	t.Parallel()

	svc, d := newTestService(t)
	d.matters.ListByUserFunc = func(context.Context, uuid.UUID) ([]domain.Matter, error) {
		t.Error("repository must not be called")
		return nil, nil
	}

	got, err := svc.List(context.Background())
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("List = %v, %v; want empty list", got, err)
	}
}

func TestList_ScopedToCaller(t *testing.T) {
	t.Parallel()

	svc, d := newTestService(t)
	userID := uuid.New()
	d.matters.ListByUserFunc = func(_ context.Context, id uuid.UUID) ([]domain.Matter, error) {
		if id != userID {
			t.Errorf("listed for %s, want %s", id, userID)
		}
		return []domain.Matter{{ID: uuid.New(), UserID: userID}}, nil
	}

	got, err := svc.List(ctxutil.WithUserID(context.Background(), userID))
	if err != nil || len(got) != 1 {
		t.Fatalf("List = %v, %v", got, err)
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	owned := &domain.Matter{ID: uuid.New()}
	boom := errors.New("db down")

	tests := []struct {
		name    string
		guard   func(context.Context, uuid.UUID) (*domain.Matter, error)
		want    *domain.Matter
		wantErr error
	}{
		{"owned", func(context.Context, uuid.UUID) (*domain.Matter, error) { return owned, nil }, owned, nil},
		{"forbidden", func(context.Context, uuid.UUID) (*domain.Matter, error) { return nil, domain.ErrForbidden }, nil, nil},
		{"anonymous", func(context.Context, uuid.UUID) (*domain.Matter, error) { return nil, domain.ErrUnauthorized }, nil, nil},
		{"store error", func(context.Context, uuid.UUID) (*domain.Matter, error) { return nil, boom }, nil, boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, d := newTestService(t)
			d.guard.MatterFunc = tt.guard

			got, err := svc.Get(context.Background(), owned.ID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Remove
// ---------------------------------------------------------------------------

func TestRemove_CascadesThenDeletesBlobs(t *testing.T) {
	t.Parallel()

	svc, d := newTestService(t)
	m := &domain.Matter{ID: uuid.New(), UserID: uuid.New()}
	d.guard.MatterFunc = func(context.Context, uuid.UUID) (*domain.Matter, error) { return m, nil }

	var steps []string
	inTx := false
	d.tx.RunInTxFunc = func(ctx context.Context, fn func(context.Context) error) error {
		inTx = true
		err := fn(ctx)
		inTx = false
		steps = append(steps, "commit")
		return err
	}
	d.events.DeleteByMatterFunc = func(context.Context, uuid.UUID) (int, error) {
		steps = append(steps, "events")
		return 2, nil
	}
	d.attachments.DeleteByMatterFunc = func(context.Context, uuid.UUID) ([]string, error) {
		steps = append(steps, "attachments")
		return []string{"k1", "k2"}, nil
	}
	d.outbox.DeleteByMatterFunc = func(context.Context, uuid.UUID) (int, error) {
		steps = append(steps, "outbox")
		return 1, nil
	}
	d.matters.DeleteFunc = func(_ context.Context, userID, id uuid.UUID) error {
		if userID != m.UserID || id != m.ID {
			t.Errorf("Delete(%s, %s)", userID, id)
		}
		steps = append(steps, "matter")
		return nil
	}
	d.blobs.DeleteFunc = func(_ context.Context, key string) error {
		if inTx {
			t.Error("blob deleted inside the transaction")
		}
		steps = append(steps, "blob:"+key)
		if key == "k1" {
			return errors.New("disk error")
		}
		return nil
	}

	if err := svc.Remove(context.Background(), m.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	want := []string{"events", "attachments", "outbox", "matter", "commit", "blob:k1", "blob:k2"}
	if !slices.Equal(steps, want) {
		t.Errorf("steps = %v, want %v", steps, want)
	}
}

func TestRemove_Forbidden(t *testing.T) {
	t.Parallel()

	svc, d := newTestService(t)
	d.tx.RunInTxFunc = func(context.Context, func(context.Context) error) error {
		t.Error("transaction must not start")
		return nil
	}

	err := svc.Remove(ctxutil.WithUserID(context.Background(), uuid.New()), uuid.New())
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestRemove_TxFailureKeepsBlobs(t *testing.T) {
	t.Parallel()

	svc, d := newTestService(t)
	m := &domain.Matter{ID: uuid.New(), UserID: uuid.New()}
	d.guard.MatterFunc = func(context.Context, uuid.UUID) (*domain.Matter, error) { return m, nil }
	d.attachments.DeleteByMatterFunc = func(context.Context, uuid.UUID) ([]string, error) {
		return []string{"k1"}, nil
	}
	d.outbox.DeleteByMatterFunc = func(context.Context, uuid.UUID) (int, error) {
		return 0, errors.New("lock timeout")
	}
	d.blobs.DeleteFunc = func(context.Context, string) error {
		t.Error("blobs must survive a rolled back removal")
		return nil
	}

	if err := svc.Remove(context.Background(), m.ID); err == nil {
		t.Fatal("expected error")
	}
}
