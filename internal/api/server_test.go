package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dandori/dandori/internal/config"
	"github.com/dandori/dandori/internal/ops"
	"github.com/dandori/dandori/internal/task"
)

type memBackend struct {
	tasks map[string]*task.Task
}

func (m *memBackend) Load() (map[string]*task.Task, error) {
	if m.tasks == nil {
		return map[string]*task.Task{}, nil
	}

	return m.tasks, nil
}

func (m *memBackend) Save(tasks map[string]*task.Task) error {
	m.tasks = tasks

	return nil
}

func newTestServer(t *testing.T) (*Server, *ops.Session) {
	t.Helper()

	sess, err := ops.OpenWith(config.Config{Username: "alice"}, &memBackend{})
	require.NoError(t, err)

	return New(sess, nil), sess
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	return rec
}

func Test_Health_Returns_OK(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv, "/health")

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func Test_TaskList_Returns_Empty_Array_When_No_Tasks(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv, "/tasks")

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func Test_TaskList_Filters_By_Status(t *testing.T) {
	srv, sess := newTestServer(t)

	a, err := sess.Add(ops.AddParams{Title: "active"})
	require.NoError(t, err)
	_, err = sess.Add(ops.AddParams{Title: "idle"})
	require.NoError(t, err)

	_, err = sess.SetStatus(a.ID, task.StatusInProgress)
	require.NoError(t, err)

	rec := get(t, srv, "/tasks?status=in_progress")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []*task.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, a.ID, got[0].ID)
}

func Test_TaskList_Hides_Archived_Unless_Asked(t *testing.T) {
	srv, sess := newTestServer(t)

	shelved, err := sess.Add(ops.AddParams{Title: "shelved"})
	require.NoError(t, err)

	_, err = sess.ArchiveTree(shelved.ID)
	require.NoError(t, err)

	var got []*task.Task

	rec := get(t, srv, "/tasks")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Empty(t, got)

	rec = get(t, srv, "/tasks?archived=true")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
}

func Test_TaskGet_Returns_Task_By_Full_ID(t *testing.T) {
	srv, sess := newTestServer(t)

	created, err := sess.Add(ops.AddParams{Title: "lookup"})
	require.NoError(t, err)

	rec := get(t, srv, "/tasks/"+created.ID)
	require.Equal(t, http.StatusOK, rec.Code)

	var got task.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "lookup", got.Title)
}

func Test_TaskGet_Returns_404_When_Unknown(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv, "/tasks/ghost")

	require.Equal(t, http.StatusNotFound, rec.Code)
}
