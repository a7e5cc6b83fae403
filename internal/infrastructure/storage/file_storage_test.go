package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalFileStorage_SaveRead(t *testing.T) {
	ctx := context.Background()
	baseDir := t.TempDir()
	fs := NewLocalFileStorage(baseDir, zap.NewNop())

	t.Run("saves into nested folders", func(t *testing.T) {
		err := fs.Save(ctx, filepath.Join("imports", "batch-1", "students.xlsx"), []byte("data"))

		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(baseDir, "imports", "batch-1", "students.xlsx"))
		assert.True(t, fs.Exists(ctx, "imports/batch-1/students.xlsx"))

		content, err := fs.Read(ctx, "imports/batch-1/students.xlsx")
		require.NoError(t, err)
		assert.Equal(t, []byte("data"), content)
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		require.NoError(t, fs.Save(ctx, "vouchers/FV-1.xlsx", []byte("original")))
		require.NoError(t, fs.Save(ctx, "vouchers/FV-1.xlsx", []byte("updated")))

		content, err := os.ReadFile(filepath.Join(baseDir, "vouchers", "FV-1.xlsx"))
		require.NoError(t, err)
		assert.Equal(t, []byte("updated"), content)
	})

	t.Run("missing file", func(t *testing.T) {
		assert.False(t, fs.Exists(ctx, "vouchers/FV-9.xlsx"))

		_, err := fs.Read(ctx, "vouchers/FV-9.xlsx")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("rejects paths outside the root", func(t *testing.T) {
		err := fs.Save(ctx, "../escape.txt", []byte("x"))
		assert.ErrorIs(t, err, ErrPathEscapesBase)

		_, err = fs.Read(ctx, "../../etc/passwd")
		assert.ErrorIs(t, err, ErrPathEscapesBase)
	})
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"students.xlsx", "students.xlsx"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\admin\Class 6 list.csv`, "Class_6_list.csv"},
		{".hidden", "hidden"},
		{"", "upload"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFileName(tt.in))
		})
	}
}
