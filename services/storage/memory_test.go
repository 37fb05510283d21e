package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Avatar(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	url, err := s.UploadAvatar(ctx, "U1", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "memory://avatars/U1", url)

	data, ok := s.Get("avatars/U1")
	require.True(t, ok)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, s.DeleteAvatar(ctx, "U1"))
	_, ok = s.Get("avatars/U1")
	assert.False(t, ok)
}

func TestMemoryStore_PutCopiesData(t *testing.T) {
	s := NewMemoryStore()
	buf := []byte("a,b\n")
	url, err := s.Put(context.Background(), "reports/r.csv", "text/csv", buf)
	require.NoError(t, err)
	assert.Equal(t, "memory://reports/r.csv", url)

	buf[0] = 'z'
	data, _ := s.Get("reports/r.csv")
	assert.Equal(t, "a,b\n", string(data))
}
