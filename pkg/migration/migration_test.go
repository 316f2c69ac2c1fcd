package migration

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type createTable struct{ table string }

func (c createTable) Up(db *gorm.DB) error {
	return db.Exec(fmt.Sprintf("CREATE TABLE %s (id TEXT PRIMARY KEY)", c.table)).Error
}

func (c createTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(c.table)
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func withRegistry(t *testing.T, entries ...entry) {
	t.Helper()
	saved := registry
	registry = entries
	t.Cleanup(func() { registry = saved })
}

func TestRunAndRollback(t *testing.T) {
	withRegistry(t,
		entry{"20240101000002_create_b", createTable{"b"}},
		entry{"20240101000001_create_a", createTable{"a"}},
	)
	db := openDB(t)
	var out bytes.Buffer
	r := New(db, &out)

	n, err := r.Run()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, db.Migrator().HasTable("a"))
	assert.True(t, db.Migrator().HasTable("b"))
	assert.Less(t, bytes.Index(out.Bytes(), []byte("create_a")), bytes.Index(out.Bytes(), []byte("create_b")))

	n, err = r.Run()
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = r.Rollback()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.False(t, db.Migrator().HasTable("a"))
}

func TestStatusListsPending(t *testing.T) {
	withRegistry(t, entry{"20240101000001_create_c", createTable{"c"}})
	var out bytes.Buffer
	require.NoError(t, New(openDB(t), &out).Status())
	assert.Contains(t, out.String(), "Pending")
}

func TestNamesAreSorted(t *testing.T) {
	withRegistry(t,
		entry{"2_b", createTable{"x"}},
		entry{"1_a", createTable{"y"}},
	)
	assert.Equal(t, []string{"1_a", "2_b"}, Names())
}
