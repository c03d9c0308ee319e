package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-api/models"
	"todo-api/store"
)

// openFunc returns an empty store; each call must yield a fresh id sequence.
type openFunc func(t *testing.T) store.Store

// runContract checks the behaviour every backend must share.
func runContract(t *testing.T, open openFunc) {
	t.Run("IDsStrictlyIncrease", func(t *testing.T) { testIDsStrictlyIncrease(t, open(t)) })
	t.Run("GetReturnsInserted", func(t *testing.T) { testGetReturnsInserted(t, open(t)) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, open(t)) })
	t.Run("ListNewestFirst", func(t *testing.T) { testListNewestFirst(t, open(t)) })
	t.Run("DeleteMissingAndTwice", func(t *testing.T) { testDeleteMissingAndTwice(t, open(t)) })
	t.Run("DeleteCompletedSubset", func(t *testing.T) { testDeleteCompletedSubset(t, open(t)) })
	t.Run("DeleteCompletedEmpty", func(t *testing.T) { testDeleteCompletedEmpty(t, open(t)) })
	t.Run("PatchCompletedOnly", func(t *testing.T) { testPatchCompletedOnly(t, open(t)) })
	t.Run("PatchExplicitFalse", func(t *testing.T) { testPatchExplicitFalse(t, open(t)) })
	t.Run("PatchEmptyIsNoop", func(t *testing.T) { testPatchEmptyIsNoop(t, open(t)) })
	t.Run("PatchMissing", func(t *testing.T) { testPatchMissing(t, open(t)) })
	t.Run("PatchClearsDueDate", func(t *testing.T) { testPatchClearsDueDate(t, open(t)) })
	t.Run("DueDateNormalizedToUTC", func(t *testing.T) { testDueDateNormalizedToUTC(t, open(t)) })
	t.Run("BuyMilkScenario", func(t *testing.T) { testBuyMilkScenario(t, open(t)) })
	t.Run("ReturnedRecordsAreCopies", func(t *testing.T) { testReturnedRecordsAreCopies(t, open(t)) })
	t.Run("Signatures", func(t *testing.T) { testSignatures(t, open(t)) })
}

func dueDate() *time.Time {
	d := time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC)
	return &d
}

func mustCreate(t *testing.T, s store.Store, task string, due *time.Time) models.Task {
	t.Helper()
	created, err := s.CreateTask(context.Background(), models.NewTask{Task: task, DueDate: due})
	require.NoError(t, err)
	return created
}

func mustComplete(t *testing.T, s store.Store, id int64) models.Task {
	t.Helper()
	updated, err := s.UpdateTask(context.Background(), id, models.TaskPatch{Completed: models.Some(true)})
	require.NoError(t, err)
	return updated
}

func ids(tasks []models.Task) []int64 {
	out := make([]int64, len(tasks))
	for i, task := range tasks {
		out[i] = task.ID
	}
	return out
}

func testIDsStrictlyIncrease(t *testing.T, s store.Store) {
	var last int64
	for i := range 5 {
		created := mustCreate(t, s, "task", nil)
		require.Greater(t, created.ID, last, "insert %d", i)
		last = created.ID
	}

	_, err := s.DeleteTask(context.Background(), last)
	require.NoError(t, err)

	next := mustCreate(t, s, "after delete", nil)
	assert.Greater(t, next.ID, last, "ids must not be reused after deletion")
}

func testGetReturnsInserted(t *testing.T, s store.Store) {
	created := mustCreate(t, s, "buy milk", dueDate())
	assert.False(t, created.Completed)
	assert.Equal(t, "buy milk", created.Task)

	got, err := s.GetTask(context.Background(), created.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(created, got); diff != "" {
		t.Fatalf("GetTask mismatch (-inserted +got):\n%s", diff)
	}
}

func testGetMissing(t *testing.T, s store.Store) {
	_, err := s.GetTask(context.Background(), 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testListNewestFirst(t *testing.T, s store.Store) {
	ctx := context.Background()
	empty, err := s.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	a := mustCreate(t, s, "a", nil)
	b := mustCreate(t, s, "b", nil)
	c := mustCreate(t, s, "c", nil)

	all, err := s.ListTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{c.ID, b.ID, a.ID}, ids(all))

	_, err = s.DeleteTask(ctx, b.ID)
	require.NoError(t, err)
	all, err = s.ListTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{c.ID, a.ID}, ids(all), "list must reflect live state")
}

func testDeleteMissingAndTwice(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, err := s.DeleteTask(ctx, 12345)
	assert.ErrorIs(t, err, store.ErrNotFound)

	created := mustCreate(t, s, "once", nil)
	deleted, err := s.DeleteTask(ctx, created.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(created, deleted); diff != "" {
		t.Fatalf("deleted record mismatch (-created +deleted):\n%s", diff)
	}

	_, err = s.DeleteTask(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetTask(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testDeleteCompletedSubset(t *testing.T, s store.Store) {
	ctx := context.Background()
	a := mustCreate(t, s, "a", nil)
	b := mustCreate(t, s, "b", dueDate())
	c := mustCreate(t, s, "c", nil)
	d := mustCreate(t, s, "d", nil)
	a = mustComplete(t, s, a.ID)
	c = mustComplete(t, s, c.ID)

	removed, err := s.DeleteCompletedTasks(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff([]models.Task{c, a}, removed); diff != "" {
		t.Fatalf("removed mismatch (-want +got):\n%s", diff)
	}

	remaining, err := s.ListTasks(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff([]models.Task{d, b}, remaining); diff != "" {
		t.Fatalf("remaining mismatch (-want +got):\n%s", diff)
	}
}

func testDeleteCompletedEmpty(t *testing.T, s store.Store) {
	mustCreate(t, s, "open", nil)

	removed, err := s.DeleteCompletedTasks(context.Background())
	require.NoError(t, err, "no completed tasks is not an error")
	assert.NotNil(t, removed)
	assert.Empty(t, removed)

	all, err := s.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testPatchCompletedOnly(t *testing.T, s store.Store) {
	created := mustCreate(t, s, "buy milk", dueDate())

	updated := mustComplete(t, s, created.ID)

	want := created
	want.Completed = true
	if diff := cmp.Diff(want, updated); diff != "" {
		t.Fatalf("patch touched more than completed (-want +got):\n%s", diff)
	}
	got, err := s.GetTask(context.Background(), created.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("stored record mismatch (-want +got):\n%s", diff)
	}
}

func testPatchExplicitFalse(t *testing.T, s store.Store) {
	created := mustCreate(t, s, "x", nil)
	mustComplete(t, s, created.ID)

	var patch models.TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{"completed": false}`), &patch))
	updated, err := s.UpdateTask(context.Background(), created.ID, patch)
	require.NoError(t, err)
	assert.False(t, updated.Completed)
	assert.Equal(t, "x", updated.Task)
}

func testPatchEmptyIsNoop(t *testing.T, s store.Store) {
	created := mustCreate(t, s, "unchanged", dueDate())

	updated, err := s.UpdateTask(context.Background(), created.ID, models.TaskPatch{})
	require.NoError(t, err)
	if diff := cmp.Diff(created, updated); diff != "" {
		t.Fatalf("empty patch changed the record (-before +after):\n%s", diff)
	}
}

func testPatchMissing(t *testing.T, s store.Store) {
	ctx := context.Background()
	created := mustCreate(t, s, "keep", nil)

	_, err := s.UpdateTask(ctx, created.ID+100, models.TaskPatch{Completed: models.Some(true)})
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.UpdateTask(ctx, created.ID+100, models.TaskPatch{})
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.GetTask(ctx, created.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(created, got); diff != "" {
		t.Fatalf("unrelated record changed (-want +got):\n%s", diff)
	}
}

func testPatchClearsDueDate(t *testing.T, s store.Store) {
	created := mustCreate(t, s, "due", dueDate())

	var patch models.TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{"dueDate": null, "task": "no longer due"}`), &patch))
	updated, err := s.UpdateTask(context.Background(), created.ID, patch)
	require.NoError(t, err)

	assert.Nil(t, updated.DueDate)
	assert.Equal(t, "no longer due", updated.Task)
	assert.False(t, updated.Completed)
}

func testDueDateNormalizedToUTC(t *testing.T, s store.Store) {
	ctx := context.Background()
	local := time.Date(2025, 1, 31, 12, 0, 0, 0, time.FixedZone("EET", 2*60*60))
	created := mustCreate(t, s, "call home", &local)

	want := models.Task{ID: created.ID, Task: "call home", DueDate: ptr(time.Date(2025, 1, 31, 10, 0, 0, 0, time.UTC))}
	if diff := cmp.Diff(want, created); diff != "" {
		t.Fatalf("CreateTask mismatch (-want +got):\n%s", diff)
	}
	assertEncodes(t, `{"id": 1, "task": "call home", "completed": false, "dueDate": "2025-01-31T10:00:00Z"}`, created)

	var patch models.TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{"dueDate": "2025-02-01T09:30:00+05:30"}`), &patch))
	updated, err := s.UpdateTask(ctx, created.ID, patch)
	require.NoError(t, err)
	want.DueDate = ptr(time.Date(2025, 2, 1, 4, 0, 0, 0, time.UTC))
	if diff := cmp.Diff(want, updated); diff != "" {
		t.Fatalf("UpdateTask mismatch (-want +got):\n%s", diff)
	}
	assertEncodes(t, `{"id": 1, "task": "call home", "completed": false, "dueDate": "2025-02-01T04:00:00Z"}`, updated)

	got, err := s.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assertEncodes(t, `{"id": 1, "task": "call home", "completed": false, "dueDate": "2025-02-01T04:00:00Z"}`, got)
}

func ptr[T any](v T) *T { return &v }

// assertEncodes compares the JSON encoding, which also catches a differing
// zone offset that time.Time.Equal ignores.
func assertEncodes(t *testing.T, want string, task models.Task) {
	t.Helper()
	got, err := json.Marshal(task)
	require.NoError(t, err)
	assert.JSONEq(t, want, string(got))
}

func testBuyMilkScenario(t *testing.T, s store.Store) {
	ctx := context.Background()
	created := mustCreate(t, s, "buy milk", nil)
	require.Equal(t, models.Task{ID: 1, Task: "buy milk"}, created)

	updated := mustComplete(t, s, 1)
	require.Equal(t, models.Task{ID: 1, Task: "buy milk", Completed: true}, updated)

	removed, err := s.DeleteCompletedTasks(ctx)
	require.NoError(t, err)
	require.Equal(t, []models.Task{{ID: 1, Task: "buy milk", Completed: true}}, removed)

	all, err := s.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testReturnedRecordsAreCopies(t *testing.T, s store.Store) {
	created := mustCreate(t, s, "original", dueDate())
	created.Task = "mutated"
	*created.DueDate = created.DueDate.Add(24 * time.Hour)

	got, err := s.GetTask(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", got.Task)
	assert.True(t, got.DueDate.Equal(*dueDate()))
}

func testSignatures(t *testing.T, s store.Store) {
	ctx := context.Background()
	msg := "hello"

	first, err := s.CreateSignature(ctx, models.NewSignature{Name: "ada", Message: &msg})
	require.NoError(t, err)
	second, err := s.CreateSignature(ctx, models.NewSignature{Name: "grace"})
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)
	assert.Nil(t, second.Message)

	got, err := s.GetSignature(ctx, first.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(first, got); diff != "" {
		t.Fatalf("GetSignature mismatch (-want +got):\n%s", diff)
	}

	updated, err := s.UpdateSignature(ctx, first.ID, models.SignaturePatch{Name: models.Some("lovelace")})
	require.NoError(t, err)
	assert.Equal(t, "lovelace", updated.Name)
	require.NotNil(t, updated.Message)
	assert.Equal(t, "hello", *updated.Message)

	all, err := s.ListSignatures(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	_, err = s.DeleteSignature(ctx, second.ID)
	require.NoError(t, err)
	_, err = s.GetSignature(ctx, second.ID)
	assert.True(t, errors.Is(err, store.ErrNotFound))
	_, err = s.UpdateSignature(ctx, second.ID, models.SignaturePatch{Name: models.Some("x")})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
