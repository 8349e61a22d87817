package libewf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilePool(t *testing.T) {
	t.Run("create, write, read, close", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "segment.E01")

		pool := NewFilePool()
		entry, err := pool.Create(path)
		assert.Nil(t, err)

		_, err = pool.WriteAt(entry, []byte("hello"), 0)
		assert.Nil(t, err)

		size, err := pool.Size(entry)
		assert.Nil(t, err)
		assert.Equal(t, int64(5), size)

		buf := make([]byte, 5)
		_, err = pool.ReadAt(entry, buf, 0)
		assert.Nil(t, err)
		assert.Equal(t, "hello", string(buf))

		assert.Nil(t, pool.Close(entry))
		_, err = pool.WriteAt(entry, []byte("x"), 0)
		assert.ErrorIs(t, err, os.ErrClosed)
	})

	t.Run("reopen existing file without truncating", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "segment.E01")

		pool := NewFilePool()
		entry, err := pool.Create(path)
		assert.Nil(t, err)
		_, err = pool.WriteAt(entry, []byte("abcdef"), 0)
		assert.Nil(t, err)
		assert.Nil(t, pool.Close(entry))

		reopened, err := pool.Open(path)
		assert.Nil(t, err)
		size, err := pool.Size(reopened)
		assert.Nil(t, err)
		assert.Equal(t, int64(6), size)
	})

	t.Run("CloseAll closes every open entry", func(t *testing.T) {
		dir := t.TempDir()
		pool := NewFilePool()
		e1, err := pool.Create(filepath.Join(dir, "a.E01"))
		assert.Nil(t, err)
		e2, err := pool.Create(filepath.Join(dir, "b.E01"))
		assert.Nil(t, err)
		assert.Nil(t, pool.CloseAll())
		_, err = pool.Size(e1)
		assert.ErrorIs(t, err, os.ErrClosed)
		_, err = pool.Size(e2)
		assert.ErrorIs(t, err, os.ErrClosed)
	})
}
