package ingest

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"strings"

	"github.com/DRSN-tech/product-qc/pkg/e"
	"github.com/jimlawless/whereami"
)

// readJSONLines читает метаданные в формате line-delimited JSON:
// одна запись на строку, пустые строки пропускаются.
func readJSONLines(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer f.Close()

	const maxLineSize = 4 << 20

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64<<10), maxLineSize)

	var records []map[string]any
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var raw map[string]any
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		records = append(records, raw)
	}

	if err := scanner.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return records, nil
}

// readCSV читает табличные метаданные, первая строка — заголовок.
// Значения остаются строками, распаковка типов происходит при нормализации.
func readCSV(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	records := make([]map[string]any, 0, len(rows)-1)
	for _, row := range rows[1:] {
		raw := make(map[string]any, len(header))
		for i, col := range header {
			if i < len(row) {
				raw[col] = row[i]
			}
		}
		records = append(records, raw)
	}

	return records, nil
}
