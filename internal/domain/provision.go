package domain

// EnsureOutcome — явный результат идемпотентного create-if-absent:
// ресурс уже существовал, был создан, либо операция не удалась
// (в последнем случае рядом возвращается ошибка).
type EnsureOutcome int

const (
	EnsureFailed EnsureOutcome = iota
	EnsureAlreadyExisted
	EnsureCreated
)

func (o EnsureOutcome) String() string {
	switch o {
	case EnsureAlreadyExisted:
		return "already existed"
	case EnsureCreated:
		return "created"
	default:
		return "failed"
	}
}
