package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DRSN-tech/product-qc/internal/cfg"
	"github.com/DRSN-tech/product-qc/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	uploaded []string
	removed  []string
}

func (f *fakeStorage) UploadFile(ctx context.Context, localPath string, objectKey string) (string, error) {
	f.uploaded = append(f.uploaded, objectKey)
	return "s3://test-bucket/" + objectKey, nil
}

func (f *fakeStorage) RemoveObjects(ctx context.Context, objectKeys []string) error {
	f.removed = append(f.removed, objectKeys...)
	return nil
}

type fakeImageRepo struct {
	inserted  []domain.ImageRecord
	insertErr error
}

func (f *fakeImageRepo) Insert(ctx context.Context, records []domain.ImageRecord) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.inserted = records
	return int64(len(records)), nil
}

func (f *fakeImageRepo) URISources(ctx context.Context) ([]EmbedSource, error) { return nil, nil }

// stubTx подменяет pgx.Tx в тестах: реальное соединение не требуется,
// невызываемые методы остаются у встроенного интерфейса.
type stubTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (s *stubTx) Commit(ctx context.Context) error {
	s.committed = true
	return nil
}

func (s *stubTx) Rollback(ctx context.Context) error {
	s.rolledBack = true
	return nil
}

type stubPool struct {
	tx *stubTx
}

func (s *stubPool) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	return s.tx, nil
}

func imagesRoot(t *testing.T, productID string, files ...string) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, productID)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, name := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("img"), 0o644))
	}
	return root
}

func TestLinkImages(t *testing.T) {
	root := imagesRoot(t, "p1", "a.jpg", "b.png")
	storage := &fakeStorage{}
	images := &fakeImageRepo{}
	products := &fakeProductRepo{ids: []string{"p1"}}
	tx := &stubTx{}
	uc := NewImageLinkUC(products, images, storage, &stubPool{tx: tx}, nil, &cfg.PipelineCfg{}, noopLogger{})

	report, err := uc.LinkImages(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, int64(2), report.Linked)
	assert.Equal(t, 1, report.Products)
	assert.True(t, tx.committed)
	assert.ElementsMatch(t, []string{"p1/a.jpg", "p1/b.png"}, storage.uploaded)
	assert.Empty(t, storage.removed)
	require.Len(t, products.patched, 1)
	assert.Equal(t, "p1", products.patched[0].ProductID)
}

func TestLinkImagesCleansUpUploadsOnTxFailure(t *testing.T) {
	root := imagesRoot(t, "p1", "a.jpg")
	storage := &fakeStorage{}
	images := &fakeImageRepo{insertErr: errors.New("insert failed")}
	products := &fakeProductRepo{ids: []string{"p1"}}
	tx := &stubTx{}
	uc := NewImageLinkUC(products, images, storage, &stubPool{tx: tx}, nil, &cfg.PipelineCfg{}, noopLogger{})

	_, err := uc.LinkImages(context.Background(), root)
	require.Error(t, err)

	// Залитые объекты не остаются сиротами после отката транзакции.
	assert.Equal(t, []string{"p1/a.jpg"}, storage.removed)
}

func TestLinkImagesSkipsUnknownProducts(t *testing.T) {
	root := imagesRoot(t, "ghost", "a.jpg")
	storage := &fakeStorage{}
	images := &fakeImageRepo{}
	tx := &stubTx{}
	uc := NewImageLinkUC(&fakeProductRepo{}, images, storage, &stubPool{tx: tx}, nil, &cfg.PipelineCfg{}, noopLogger{})

	report, err := uc.LinkImages(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 1, report.SkippedUnknown)
	assert.Zero(t, report.Linked)
	assert.Empty(t, storage.uploaded)
}
