// Package linker собирает локальные файлы изображений и связывает их
// с товарами по имени каталога.
package linker

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/DRSN-tech/product-qc/internal/domain"
	"github.com/DRSN-tech/product-qc/pkg/e"
	"github.com/DRSN-tech/product-qc/pkg/logger"
	"github.com/jimlawless/whereami"
)

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

// Result описывает найденные на диске изображения: плоский список записей
// для таблицы изображений и ссылки, сгруппированные по товару.
type Result struct {
	Records    []domain.ImageRecord
	PerProduct map[string][]domain.ImageRef
}

// Collect обходит каталог <root>/<product_id>/*.{jpg,jpeg,png,webp}.
// Отсутствующий корень не ошибка: возвращается пустой результат.
func Collect(root string, now time.Time, log logger.Logger) (*Result, error) {
	result := &Result{
		Records:    []domain.ImageRecord{},
		PerProduct: map[string][]domain.ImageRef{},
	}

	if _, err := os.Stat(root); os.IsNotExist(err) {
		log.Warnf("images root %q does not exist, nothing to link", root)
		return result, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		productID := entry.Name()

		files, err := collectProductImages(filepath.Join(root, productID))
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		for _, path := range files {
			result.Records = append(result.Records, *domain.NewImageRecord(productID, path, now))
			result.PerProduct[productID] = append(result.PerProduct[productID], domain.ImageRef{
				LocalPath: path,
			})
		}
	}

	return result, nil
}

func collectProductImages(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := imageExtensions[strings.ToLower(filepath.Ext(path))]; ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
