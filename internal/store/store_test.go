package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mumz-advisor/internal/db"
)

type doc struct {
	ID    string   `json:"id"`
	Items []string `json:"items"`
}

// exerciseKV runs the behaviour every backend must share.
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()

	got, err := kv.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, kv.Put("chatUser", []byte(`{"id":"a"}`)))
	got, err = kv.Get("chatUser")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a"}`, string(got))

	require.NoError(t, kv.Put("chatUser", []byte(`{"id":"b"}`)))
	got, err = kv.Get("chatUser")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"b"}`, string(got))

	require.NoError(t, kv.Delete("chatUser"))
	require.NoError(t, kv.Delete("chatUser"))
	got, err = kv.Get("chatUser")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore(t *testing.T) {
	exerciseKV(t, NewMemoryStore())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	m := NewMemoryStore()
	v := []byte("abc")
	require.NoError(t, m.Put("k", v))
	v[0] = 'z'
	got, _ := m.Get("k")
	assert.Equal(t, "abc", string(got))
	assert.Equal(t, []string{"k"}, m.Keys())
}

func TestFileStore(t *testing.T) {
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "nested"))
	require.NoError(t, err)
	exerciseKV(t, fs)
}

func TestFileStoreEscapesKeys(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, fs.Put("browser/../x:cart_a", []byte("[]")))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].Name(), "/")
}

func TestNewFileStoreRequiresDir(t *testing.T) {
	_, err := NewFileStore("")
	assert.Error(t, err)
}

func TestDatabaseStore(t *testing.T) {
	dsn := os.Getenv("TEST_DB_URL")
	if dsn == "" {
		t.Skip("TEST_DB_URL not set")
	}
	database, err := db.New(dsn, nil)
	require.NoError(t, err)
	defer database.Close()
	require.NoError(t, database.RunMigrations(db.Migrations()))

	exerciseKV(t, NewDatabaseStore(database))
}

func TestNamespace(t *testing.T) {
	m := NewMemoryStore()
	a := Namespace(m, "browser-a")
	b := Namespace(m, "browser-b")

	require.NoError(t, a.Put("chatUser", []byte(`1`)))
	got, err := b.Get("chatUser")
	require.NoError(t, err)
	assert.Nil(t, got)

	raw, err := m.Get("browser-a:chatUser")
	require.NoError(t, err)
	assert.Equal(t, "1", string(raw))
}

func TestLoadSaveJSON(t *testing.T) {
	m := NewMemoryStore()

	var out doc
	found, err := LoadJSON(m, "doc", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SaveJSON(m, "doc", doc{ID: "x", Items: []string{"a"}}))
	found, err = LoadJSON(m, "doc", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, doc{ID: "x", Items: []string{"a"}}, out)
}

func TestLoadJSONCorrupt(t *testing.T) {
	m := NewMemoryStore()
	require.NoError(t, m.Put("doc", []byte(`{"id": "x", "items": [`)))

	var out doc
	found, err := LoadJSON(m, "doc", &out)
	assert.False(t, found)
	assert.ErrorIs(t, err, ErrCorrupt)
}
