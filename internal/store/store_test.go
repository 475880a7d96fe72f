package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laitheanh1062006/simple-schedule-organizer/internal/model"
	"github.com/laitheanh1062006/simple-schedule-organizer/internal/storage"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func counterIDs() func(string) string {
	n := 0
	return func(prefix string) string {
		n++
		return fmt.Sprintf("%s_%d", prefix, n)
	}
}

func newStoreForTests(t *testing.T) (*Store, *storage.MemoryKV, *fakeClock) {
	t.Helper()
	kv := storage.NewMemoryKV()
	clock := &fakeClock{now: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
	s := New(context.Background(), kv, WithClock(clock), WithIDGenerator(counterIDs()))
	return s, kv, clock
}

func ptr[T any](v T) *T { return &v }

func TestStore_TaskIDsStayUnique(t *testing.T) {
	s, _, _ := newStoreForTests(t)

	a := s.AddTask(model.NewTask{Title: "A"})
	b := s.AddTask(model.NewTask{Title: "B"})
	s.UpdateTask(a.ID, model.TaskPatch{Title: ptr("A2")})
	s.DeleteTask(b.ID)
	s.AddTask(model.NewTask{Title: "C"})
	s.AddTask(model.NewTask{Title: "D"})

	seen := map[string]bool{}
	for _, task := range s.Tasks() {
		assert.False(t, seen[task.ID], "duplicate id %s", task.ID)
		seen[task.ID] = true
	}
	assert.Len(t, s.Tasks(), 3)
}

func TestStore_IDGeneratorSkipsCollisions(t *testing.T) {
	kv := storage.NewMemoryKV()
	ids := []string{"x_1", "x_1", "x_2"}
	s := New(context.Background(), kv, WithIDGenerator(func(string) string {
		id := ids[0]
		ids = ids[1:]
		return id
	}))

	a := s.AddTask(model.NewTask{Title: "A"})
	b := s.AddFolder(model.NewFolder{Name: "B"})
	assert.Equal(t, "x_1", a.ID)
	assert.Equal(t, "x_2", b.ID)
}

func TestStore_DefaultIDsArePrefixed(t *testing.T) {
	s := New(context.Background(), storage.NewMemoryKV())

	assert.Regexp(t, `^task_[0-9a-f-]{36}$`, s.AddTask(model.NewTask{Title: "A"}).ID)
	assert.Regexp(t, `^doc_[0-9a-f-]{36}$`, s.AddDocument(model.NewDocument{Name: "D"}).ID)
	assert.Regexp(t, `^folder_[0-9a-f-]{36}$`, s.AddFolder(model.NewFolder{Name: "F"}).ID)
}

func TestStore_AddTaskAppendsAndPersists(t *testing.T) {
	s, kv, _ := newStoreForTests(t)
	deadline := model.NewDate(2026, time.October, 31)

	a := s.AddTask(model.NewTask{Title: "A"})
	b := s.AddTask(model.NewTask{Title: "B", Completed: true, Deadline: &deadline})

	tasks := s.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, a.ID, tasks[0].ID)
	assert.Equal(t, b.ID, tasks[1].ID)
	assert.True(t, tasks[1].Completed)
	require.NotNil(t, tasks[1].Deadline)
	assert.True(t, tasks[1].Deadline.Equal(deadline))

	assert.Equal(t, 2, kv.Writes(Key(DefaultKeyPrefix, CollectionTasks)))
	assert.Equal(t, 0, kv.Writes(Key(DefaultKeyPrefix, CollectionDocuments)))
}

func TestStore_UpdateTaskMergesFields(t *testing.T) {
	s, _, _ := newStoreForTests(t)
	deadline := model.NewDate(2026, time.November, 1)
	a := s.AddTask(model.NewTask{Title: "A", Deadline: &deadline})

	got, ok := s.UpdateTask(a.ID, model.TaskPatch{Completed: ptr(true)})
	require.True(t, ok)
	assert.Equal(t, "A", got.Title)
	assert.True(t, got.Completed)
	require.NotNil(t, got.Deadline)

	got, ok = s.UpdateTask(a.ID, model.TaskPatch{ClearDeadline: true, Title: ptr("A!")})
	require.True(t, ok)
	assert.Equal(t, "A!", got.Title)
	assert.Nil(t, got.Deadline)
}

func TestStore_UnknownIDsAreNoOps(t *testing.T) {
	s, kv, _ := newStoreForTests(t)
	s.AddTask(model.NewTask{Title: "A"})
	before := kv.Writes(Key(DefaultKeyPrefix, CollectionTasks))

	_, ok := s.UpdateTask("task_missing", model.TaskPatch{Title: ptr("x")})
	assert.False(t, ok)
	assert.False(t, s.DeleteTask("task_missing"))
	_, ok = s.UpdateDocument("doc_missing", model.DocumentPatch{Name: ptr("x")})
	assert.False(t, ok)
	assert.False(t, s.DeleteDocument("doc_missing"))
	_, ok = s.UpdateFolder("folder_missing", model.FolderPatch{Name: ptr("x")})
	assert.False(t, ok)
	assert.False(t, s.DeleteFolder("folder_missing"))
	assert.NoError(t, s.AttachDocumentToTask("task_missing", "doc_missing"))
	assert.False(t, s.RemoveDocumentFromTask("task_missing", "doc_missing"))

	assert.Equal(t, before, kv.Writes(Key(DefaultKeyPrefix, CollectionTasks)), "no-ops never write")
	assert.Len(t, s.Tasks(), 1)
}

func TestStore_DeleteDocumentScrubsTasks(t *testing.T) {
	s, kv, _ := newStoreForTests(t)
	doc := s.AddDocument(model.NewDocument{Name: "Plan", Content: model.TextContent("x")})
	other := s.AddDocument(model.NewDocument{Name: "Notes", Content: model.TextContent("y")})
	a := s.AddTask(model.NewTask{Title: "A"})
	b := s.AddTask(model.NewTask{Title: "B"})
	require.NoError(t, s.AttachDocumentToTask(a.ID, doc.ID))
	require.NoError(t, s.AttachDocumentToTask(a.ID, other.ID))
	require.NoError(t, s.AttachDocumentToTask(b.ID, doc.ID))
	taskWrites := kv.Writes(Key(DefaultKeyPrefix, CollectionTasks))

	require.True(t, s.DeleteDocument(doc.ID))

	_, ok := s.Document(doc.ID)
	assert.False(t, ok)
	for _, task := range s.Tasks() {
		assert.NotContains(t, task.DocumentIDs, doc.ID)
	}
	gotA, _ := s.Task(a.ID)
	assert.Equal(t, []string{other.ID}, gotA.DocumentIDs)
	assert.Equal(t, taskWrites+1, kv.Writes(Key(DefaultKeyPrefix, CollectionTasks)), "tasks mirrored after cleanup")
}

func TestStore_DeleteFolderUnfilesDocuments(t *testing.T) {
	s, kv, _ := newStoreForTests(t)
	work := s.AddFolder(model.NewFolder{Name: "Work"})
	plan := s.AddDocument(model.NewDocument{Name: "Plan", Content: model.TextContent("x"), FolderID: &work.ID})
	require.NotNil(t, plan.FolderID)
	docWrites := kv.Writes(Key(DefaultKeyPrefix, CollectionDocuments))

	require.True(t, s.DeleteFolder(work.ID))

	got, ok := s.Document(plan.ID)
	require.True(t, ok, "document survives its folder")
	assert.Nil(t, got.FolderID)
	assert.Equal(t, plan.UpdatedAt, got.UpdatedAt)
	for _, d := range s.Documents() {
		assert.False(t, d.InFolder(work.ID))
	}
	assert.Empty(t, s.Folders())
	assert.Equal(t, docWrites+1, kv.Writes(Key(DefaultKeyPrefix, CollectionDocuments)))
}

func TestStore_AddDocumentIgnoresUnknownFolder(t *testing.T) {
	s, _, _ := newStoreForTests(t)
	d := s.AddDocument(model.NewDocument{Name: "Plan", FolderID: ptr("folder_nope")})
	assert.Nil(t, d.FolderID)
	assert.Equal(t, model.ContentText, d.Content.Kind)
}

func TestStore_UpdateDocumentTimestamps(t *testing.T) {
	s, _, clock := newStoreForTests(t)
	d := s.AddDocument(model.NewDocument{Name: "Plan", Content: model.TextContent("v1")})
	assert.Equal(t, d.CreatedAt, d.UpdatedAt)

	clock.Advance(time.Minute)
	got, ok := s.UpdateDocument(d.ID, model.DocumentPatch{Content: &model.Content{Kind: model.ContentText, Text: "v2"}})
	require.True(t, ok)
	assert.Equal(t, d.CreatedAt, got.CreatedAt)
	assert.True(t, got.UpdatedAt.After(d.UpdatedAt))
	assert.Equal(t, "v2", got.Content.Text)

	clock.Advance(-time.Hour)
	again, ok := s.UpdateDocument(d.ID, model.DocumentPatch{Name: ptr("Plan v2")})
	require.True(t, ok)
	assert.False(t, again.UpdatedAt.Before(got.UpdatedAt), "updatedAt never moves backwards")
	assert.Equal(t, d.CreatedAt, again.CreatedAt)
}

func TestStore_UpdateDocumentFolder(t *testing.T) {
	s, _, _ := newStoreForTests(t)
	f := s.AddFolder(model.NewFolder{Name: "Work"})
	d := s.AddDocument(model.NewDocument{Name: "Plan"})

	got, _ := s.UpdateDocument(d.ID, model.DocumentPatch{FolderID: &f.ID})
	require.NotNil(t, got.FolderID)
	assert.Equal(t, f.ID, *got.FolderID)

	got, _ = s.UpdateDocument(d.ID, model.DocumentPatch{FolderID: ptr("folder_nope")})
	require.NotNil(t, got.FolderID, "unknown folder leaves filing unchanged")

	got, _ = s.UpdateDocument(d.ID, model.DocumentPatch{FolderID: ptr("")})
	assert.Nil(t, got.FolderID)
}

func TestStore_AttachIsIdempotent(t *testing.T) {
	s, kv, _ := newStoreForTests(t)
	a := s.AddTask(model.NewTask{Title: "A"})
	d := s.AddDocument(model.NewDocument{Name: "Plan"})

	require.NoError(t, s.AttachDocumentToTask(a.ID, d.ID))
	writes := kv.Writes(Key(DefaultKeyPrefix, CollectionTasks))
	require.NoError(t, s.AttachDocumentToTask(a.ID, d.ID))

	got, _ := s.Task(a.ID)
	assert.Equal(t, []string{d.ID}, got.DocumentIDs)
	assert.Equal(t, writes, kv.Writes(Key(DefaultKeyPrefix, CollectionTasks)))
}

func TestStore_AttachRejectsUnknownDocument(t *testing.T) {
	s, _, _ := newStoreForTests(t)
	a := s.AddTask(model.NewTask{Title: "A"})

	err := s.AttachDocumentToTask(a.ID, "doc_nonexistent")
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	got, _ := s.Task(a.ID)
	assert.Empty(t, got.DocumentIDs)
}

func TestStore_RemoveDocumentFromTask(t *testing.T) {
	s, _, _ := newStoreForTests(t)
	a := s.AddTask(model.NewTask{Title: "A"})
	d := s.AddDocument(model.NewDocument{Name: "Plan"})
	require.NoError(t, s.AttachDocumentToTask(a.ID, d.ID))

	assert.True(t, s.RemoveDocumentFromTask(a.ID, d.ID))
	assert.False(t, s.RemoveDocumentFromTask(a.ID, d.ID))
	got, _ := s.Task(a.ID)
	assert.Empty(t, got.DocumentIDs)
	_, ok := s.Document(d.ID)
	assert.True(t, ok, "detaching keeps the document")
}

func TestStore_UpdateTaskDropsUnknownDocumentIDs(t *testing.T) {
	s, _, _ := newStoreForTests(t)
	a := s.AddTask(model.NewTask{Title: "A"})
	d := s.AddDocument(model.NewDocument{Name: "Plan"})

	got, ok := s.UpdateTask(a.ID, model.TaskPatch{DocumentIDs: &[]string{d.ID, "doc_ghost", d.ID}})
	require.True(t, ok)
	assert.Equal(t, []string{d.ID}, got.DocumentIDs)
}

func TestStore_SnapshotsAreCopies(t *testing.T) {
	s, _, _ := newStoreForTests(t)
	a := s.AddTask(model.NewTask{Title: "A"})
	d := s.AddDocument(model.NewDocument{Name: "Bin", Content: model.BinaryContent([]byte{1, 2, 3}, "application/pdf")})
	require.NoError(t, s.AttachDocumentToTask(a.ID, d.ID))

	tasks := s.Tasks()
	tasks[0].Title = "mutated"
	tasks[0].DocumentIDs[0] = "doc_mutated"
	docs := s.Documents()
	docs[0].Content.Data[0] = 9

	got, _ := s.Task(a.ID)
	assert.Equal(t, "A", got.Title)
	assert.Equal(t, []string{d.ID}, got.DocumentIDs)
	gotDoc, _ := s.Document(d.ID)
	assert.Equal(t, []byte{1, 2, 3}, gotDoc.Content.Data)
}

func TestStore_RoundTripThroughStorage(t *testing.T) {
	s, kv, _ := newStoreForTests(t)
	deadline := model.NewDate(2026, time.December, 24)
	f := s.AddFolder(model.NewFolder{Name: "Work"})
	d1 := s.AddDocument(model.NewDocument{Name: "Plan", Content: model.TextContent("hello"), FolderID: &f.ID})
	d2 := s.AddDocument(model.NewDocument{Name: "Scan", Content: model.BinaryContent([]byte{0, 1, 2, 255}, "image/png")})
	a := s.AddTask(model.NewTask{Title: "A", Deadline: &deadline})
	s.AddTask(model.NewTask{Title: "B", Completed: true})
	require.NoError(t, s.AttachDocumentToTask(a.ID, d1.ID))
	require.NoError(t, s.AttachDocumentToTask(a.ID, d2.ID))

	reloaded := New(context.Background(), kv)

	if diff := cmp.Diff(s.Tasks(), reloaded.Tasks()); diff != "" {
		t.Fatalf("tasks mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(s.Documents(), reloaded.Documents()); diff != "" {
		t.Fatalf("documents mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(s.Folders(), reloaded.Folders()); diff != "" {
		t.Fatalf("folders mismatch (-want +got):\n%s", diff)
	}

	got, _ := reloaded.Task(a.ID)
	require.NotNil(t, got.Deadline)
	assert.Equal(t, time.December, got.Deadline.Month, "deadline decoded as a date value")
}

// setLocalZone swaps time.Local for the duration of the test.
func setLocalZone(t *testing.T, loc *time.Location) {
	t.Helper()
	prev := time.Local
	time.Local = loc
	t.Cleanup(func() { time.Local = prev })
}

func TestStore_LoadsLegacyMirror(t *testing.T) {
	setLocalZone(t, time.UTC)
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, "todoDesk_tasks", []byte(`[
		{"id":"task_1700000000000","title":"Ship","completed":false,"deadline":"2026-10-20T00:00:00.000Z","documentIds":["doc_1","doc_1","doc_gone"]}
	]`)))
	require.NoError(t, kv.Set(ctx, "todoDesk_documents", []byte(`[
		{"id":"doc_1","name":"hello.txt","content":"data:text/plain;base64,aGVsbG8=","folderId":"folder_gone","createdAt":"2026-10-01T10:00:00.000Z","updatedAt":"2026-10-02T10:00:00.000Z"},
		{"id":"doc_2","name":"note","content":"just text","createdAt":"2026-10-01T10:00:00.000Z","updatedAt":"2026-10-01T10:00:00.000Z"}
	]`)))
	require.NoError(t, kv.Set(ctx, "todoDesk_folders", []byte(`[{"id":"folder_1","name":"Work"}]`)))

	s := New(ctx, kv)

	tasks := s.Tasks()
	require.Len(t, tasks, 1)
	require.NotNil(t, tasks[0].Deadline)
	assert.Equal(t, "2026-10-20", tasks[0].Deadline.String())
	assert.Equal(t, []string{"doc_1"}, tasks[0].DocumentIDs)

	doc, ok := s.Document("doc_1")
	require.True(t, ok)
	assert.True(t, doc.Content.IsBinary())
	assert.Equal(t, "text/plain", doc.Content.MIMEType)
	assert.Equal(t, []byte("hello"), doc.Content.Data)
	assert.Nil(t, doc.FolderID, "reference to a missing folder is cleared")

	note, _ := s.Document("doc_2")
	assert.Equal(t, model.TextContent("just text"), note.Content)
	assert.Len(t, s.Folders(), 1)
}

func TestStore_LegacyDeadlinesKeepLocalDay(t *testing.T) {
	setLocalZone(t, time.FixedZone("ICT", 7*60*60))
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, "todoDesk_tasks", []byte(`[
		{"id":"task_1","title":"Picked Oct 20","completed":false,"deadline":"2026-10-19T17:00:00.000Z"},
		{"id":"task_2","title":"New format","completed":false,"deadline":"2026-10-21"}
	]`)))

	s := New(ctx, kv)

	tasks := s.Tasks()
	require.Len(t, tasks, 2)
	require.NotNil(t, tasks[0].Deadline)
	assert.Equal(t, "2026-10-20", tasks[0].Deadline.String())
	require.NotNil(t, tasks[1].Deadline)
	assert.Equal(t, "2026-10-21", tasks[1].Deadline.String())
}

func TestStore_InvalidBlobsLoadEmpty(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, "todoDesk_tasks", []byte(`{"not":"an array"}`)))
	require.NoError(t, kv.Set(ctx, "todoDesk_documents", []byte(`not json at all`)))
	require.NoError(t, kv.Set(ctx, "todoDesk_folders", []byte(`[{"id":""},{"id":"folder_1","name":"A"},{"id":"folder_1","name":"dup"},42]`)))

	s := New(ctx, kv)

	assert.Empty(t, s.Tasks())
	assert.Empty(t, s.Documents())
	assert.Equal(t, []model.Folder{{ID: "folder_1", Name: "A"}}, s.Folders())
}

func TestStore_WriteFailuresAreSwallowed(t *testing.T) {
	s, kv, _ := newStoreForTests(t)
	kv.FailWrites(errors.New("quota exceeded"))

	a := s.AddTask(model.NewTask{Title: "A"})
	f := s.AddFolder(model.NewFolder{Name: "F"})
	s.DeleteFolder(f.ID)

	_, ok := s.Task(a.ID)
	assert.True(t, ok, "in-memory state still changes")
	assert.EqualValues(t, 4, s.PersistErrors())
}

func TestStore_KeyPrefixAndReload(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	s := New(ctx, kv, WithKeyPrefix("alt_"))
	s.AddFolder(model.NewFolder{Name: "Work"})

	_, ok, err := kv.Get(ctx, "alt_folders")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, kv.Set(ctx, "alt_folders", []byte(`[]`)))
	s.Reload(ctx)
	assert.Empty(t, s.Folders())
}

type deadlineKV struct {
	*storage.MemoryKV
	remaining []time.Duration
}

func (k *deadlineKV) Set(ctx context.Context, key string, value []byte) error {
	if dl, ok := ctx.Deadline(); ok {
		k.remaining = append(k.remaining, time.Until(dl))
	}
	return k.MemoryKV.Set(ctx, key, value)
}

func TestStore_WriteTimeoutBoundsMirrorWrites(t *testing.T) {
	kv := &deadlineKV{MemoryKV: storage.NewMemoryKV()}
	s := New(context.Background(), kv, WithWriteTimeout(time.Minute))

	s.AddFolder(model.NewFolder{Name: "Work"})

	require.Len(t, kv.remaining, 1)
	assert.LessOrEqual(t, kv.remaining[0], time.Minute)
	assert.Greater(t, kv.remaining[0], defaultWriteTimeout)
}
