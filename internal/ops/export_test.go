package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dandori/dandori/internal/config"
)

func Test_ExportJSON_Refuses_Existing_File(t *testing.T) {
	sess, _ := newTestSession(t)

	path := filepath.Join(t.TempDir(), "dump.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	err := sess.ExportJSON(path)
	require.ErrorContains(t, err, "already exists")
}

func Test_ImportJSON_Roundtrips_Exported_Tasks(t *testing.T) {
	source, _ := newTestSession(t)

	parent, err := source.Add(AddParams{Title: "parent"})
	require.NoError(t, err)
	child, err := source.Add(AddParams{Title: "child", ParentIDs: []string{parent.ID}})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dump.json")
	require.NoError(t, source.ExportJSON(path))

	target, err := OpenWith(config.Config{Username: "bob"}, &memBackend{})
	require.NoError(t, err)

	report, err := target.ImportJSON(path)
	require.NoError(t, err)
	require.Len(t, report.Imported, 2)
	require.Empty(t, report.Skipped)

	imported, err := target.Get(child.ID)
	require.NoError(t, err)
	require.Equal(t, "child", imported.Title)
	require.Equal(t, []string{parent.ID}, imported.DependsOn)
}

func Test_ImportJSON_Skips_Colliding_IDs(t *testing.T) {
	source, _ := newTestSession(t)

	existing, err := source.Add(AddParams{Title: "original"})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dump.json")
	require.NoError(t, source.ExportJSON(path))

	report, err := source.ImportJSON(path)
	require.NoError(t, err)
	require.Empty(t, report.Imported)
	require.Equal(t, []string{existing.ID}, report.Skipped)

	kept, err := source.Get(existing.ID)
	require.NoError(t, err)
	require.Equal(t, "original", kept.Title, "existing data wins on collision")
}

func Test_ImportJSON_Fails_On_Malformed_Document(t *testing.T) {
	sess, _ := newTestSession(t)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("[not an object]"), 0o600))

	_, err := sess.ImportJSON(path)
	require.Error(t, err)
}

func Test_Check_Reports_Clean_For_Store_Built_Graph(t *testing.T) {
	sess, _ := newTestSession(t)

	parent, err := sess.Add(AddParams{Title: "parent"})
	require.NoError(t, err)
	_, err = sess.Add(AddParams{Title: "child", ParentIDs: []string{parent.ID}})
	require.NoError(t, err)

	report := sess.Check()
	require.True(t, report.Clean())
}

func Test_Check_Reports_Asymmetry_On_Imported_Graph(t *testing.T) {
	sess, _ := newTestSession(t)

	a, err := sess.Add(AddParams{Title: "a"})
	require.NoError(t, err)
	b, err := sess.Add(AddParams{Title: "b"})
	require.NoError(t, err)

	// Break symmetry by hand, the way a bad import could.
	live, err := sess.Store().Get(a.ID)
	require.NoError(t, err)
	live.Children = append(live.Children, b.ID)

	report := sess.Check()
	require.False(t, report.Clean())
	require.Len(t, report.Inconsistencies, 1)
	require.Equal(t, a.ID, report.Inconsistencies[0].TaskID)
}
