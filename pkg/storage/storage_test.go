package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/config"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

func TestLocalStorePutAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/uploads/")
	require.NoError(t, err)

	ctx := context.Background()
	url, err := store.Put(ctx, Object{Key: "products/a.png", ContentType: "image/png", Body: bytes.NewReader(pngHeader)})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/products/a.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "products", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	require.NoError(t, store.Delete(ctx, "products/a.png"))
	_, err = os.Stat(filepath.Join(dir, "products", "a.png"))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, store.Delete(ctx, "products/a.png"))
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	_, err = store.Put(context.Background(), Object{Key: "../escape.png", Body: bytes.NewReader(pngHeader)})
	assert.Error(t, err)
	_, err = store.Put(context.Background(), Object{Key: "/etc/passwd", Body: bytes.NewReader(pngHeader)})
	assert.Error(t, err)
}

func TestValidateImage(t *testing.T) {
	ct, err := ValidateImage("photo.PNG", pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	_, err = ValidateImage("photo.txt", pngHeader)
	assert.ErrorIs(t, err, ErrImageExtension)

	_, err = ValidateImage("photo.jpg", []byte("plain text pretending to be a jpeg"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestImageKey(t *testing.T) {
	key := ImageKey("/products/", "Shoe.JPG")
	assert.True(t, strings.HasPrefix(key, "products/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.NotEqual(t, key, ImageKey("products", "Shoe.JPG"))
}

func TestNewSelectsLocalDriver(t *testing.T) {
	store, err := New(context.Background(), config.StorageConfig{Driver: config.StorageDriverLocal, LocalDir: t.TempDir(), PublicBaseURL: "/uploads"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)

	_, err = New(context.Background(), config.StorageConfig{Driver: "ftp"}, nil)
	assert.Error(t, err)
}
