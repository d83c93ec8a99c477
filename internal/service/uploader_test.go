package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/maganghub/maganghub-api/pkg/errors"
	"github.com/maganghub/maganghub-api/pkg/imaging"
)

type photoStorageFake struct {
	saved   []string
	deleted []string
	failAt  int // 1-based Save call that fails; 0 means never
	calls   int
}

func (f *photoStorageFake) Save(prefix, ext string, data []byte) (string, error) {
	f.calls++
	if f.failAt > 0 && f.calls >= f.failAt {
		return "", errors.New("disk full")
	}
	name := fmt.Sprintf("%s/photo-%d.%s", prefix, f.calls, ext)
	f.saved = append(f.saved, name)
	return name, nil
}

func (f *photoStorageFake) Delete(name string) error {
	f.deleted = append(f.deleted, name)
	return nil
}

// testPhotoPNG returns a small valid PNG the processor can decode.
func testPhotoPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: uint8(40 * x), G: uint8(40 * y), B: 120, A: 255})
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestUploadBatchStoresEveryPhoto(t *testing.T) {
	storage := &photoStorageFake{}
	uploader := NewPhotoUploader(imaging.NewProcessor(0, 0), storage, nil, 0)

	photo := testPhotoPNG(t)
	urls, err := uploader.UploadBatch("izin", [][]byte{photo, photo})

	require.NoError(t, err)
	assert.Equal(t, []string{"izin/photo-1.jpg", "izin/photo-2.jpg"}, urls)
	assert.Empty(t, storage.deleted)
}

func TestUploadBatchRollsBackOnStorageFailure(t *testing.T) {
	storage := &photoStorageFake{failAt: 2}
	uploader := NewPhotoUploader(imaging.NewProcessor(0, 0), storage, nil, 0)

	photo := testPhotoPNG(t)
	_, err := uploader.UploadBatch("izin", [][]byte{photo, photo})

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUploadFailed))
	// the first photo made it to disk and must be gone again
	assert.Equal(t, []string{"izin/photo-1.jpg"}, storage.deleted)
}

func TestUploadBatchRejectsUndecodableBytes(t *testing.T) {
	storage := &photoStorageFake{}
	uploader := NewPhotoUploader(imaging.NewProcessor(0, 0), storage, nil, 0)

	_, err := uploader.UploadBatch("izin", [][]byte{testPhotoPNG(t), []byte("not an image")})

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUploadFailed))
	assert.Equal(t, []string{"izin/photo-1.jpg"}, storage.deleted)
}

func TestUploadBatchValidatesBatchSize(t *testing.T) {
	storage := &photoStorageFake{}
	uploader := NewPhotoUploader(imaging.NewProcessor(0, 0), storage, nil, 2)
	photo := testPhotoPNG(t)

	_, err := uploader.UploadBatch("izin", nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = uploader.UploadBatch("izin", [][]byte{photo, photo, photo})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Zero(t, storage.calls)
}
