package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Ошибки конфигурации и входных данных
	ErrUnsupportedFileType  = fmt.Errorf("unsupported file type, expected .json or .csv")
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")

	// Ошибки пайплайна эмбеддингов
	ErrEmptyVectors          = fmt.Errorf("empty vectors")
	ErrVectorCountMismatch   = fmt.Errorf("vector count does not match source count")
	ErrVectorLengthMismatch  = fmt.Errorf("vector length mismatch")
	ErrUnknownEmbeddingTable = fmt.Errorf("unknown embedding table")
	ErrEmbeddingNotFound     = fmt.Errorf("embedding not found")

	// Ошибки поиска
	ErrProductIDRequired = fmt.Errorf("product id is required")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
