package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/taskmanager/internal/config"
)

func TestNamingPolicies(t *testing.T) {
	assert.Equal(t, "avatars/avatar_abc.png", AvatarName("abc")(".png"))

	first := DocumentName()(".pdf")
	second := DocumentName()(".pdf")
	assert.True(t, strings.HasPrefix(first, "documents/"))
	assert.True(t, strings.HasSuffix(first, ".pdf"))
	assert.NotEqual(t, first, second)
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "image/png", ContentTypeFor("avatars/a.png"))
	assert.Equal(t, "image/jpeg", ContentTypeFor("avatars/a.JPG"))
	assert.Equal(t, "image/jpeg", ContentTypeFor("avatars/a.jpeg"))
	assert.Equal(t, "application/octet-stream", ContentTypeFor("documents/a.pdf"))
}

func TestCleanLocator(t *testing.T) {
	cleaned, err := cleanLocator("avatars//./a.png")
	require.NoError(t, err)
	assert.Equal(t, "avatars/a.png", cleaned)

	for _, bad := range []string{"", ".", "..", "../a", "/abs", "a\\..\\b", "x/../../y"} {
		_, err := cleanLocator(bad)
		assert.ErrorIs(t, err, ErrInvalidLocator, bad)
	}
}

func TestNew(t *testing.T) {
	dir := t.TempDir()

	backend, err := New(context.Background(), &config.StorageSettings{LocalPath: dir})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, backend)

	backend, err = New(context.Background(), &config.StorageSettings{Driver: "LOCAL", LocalPath: dir})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, backend)

	_, err = New(context.Background(), &config.StorageSettings{Driver: "ftp"})
	assert.ErrorContains(t, err, "unknown storage driver")

	_, err = New(context.Background(), &config.StorageSettings{Driver: "s3"})
	assert.Error(t, err, "s3 without a bucket is rejected")
}
