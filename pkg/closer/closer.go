package closer

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Closer собирает функции освобождения ресурсов и закрывает их в порядке LIFO.
// Команды пайплайна регистрируют подключения (база, MinIO, Qdrant, Redis, Kafka)
// по мере инициализации и вызывают Close один раз перед завершением.
type Closer struct {
	mu    sync.Mutex
	once  sync.Once
	funcs []Func
}

// Func — сигнатура функции закрытия ресурса.
type Func func(ctx context.Context) error

func New() *Closer {
	return &Closer{}
}

// Add добавляет функцию в список закрытия
func (c *Closer) Add(f Func) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.funcs = append(c.funcs, f)
}

// Close последовательно закрывает все зарегистрированные ресурсы (LIFO).
// Ошибки отдельных ресурсов накапливаются и возвращаются одной ошибкой,
// закрытие остальных при этом продолжается.
func (c *Closer) Close(ctx context.Context) error {
	var err error
	c.once.Do(func() {
		c.mu.Lock()
		funcs := c.funcs
		c.mu.Unlock()

		var msgs []string
		for i := len(funcs) - 1; i >= 0; i-- {
			if cerr := funcs[i](ctx); cerr != nil {
				msgs = append(msgs, fmt.Sprintf("[!] %v", cerr))
			}

			select {
			case <-ctx.Done():
				msgs = append(msgs, fmt.Sprintf("[!] shutdown interrupted: %v", ctx.Err()))
				err = fmt.Errorf("shutdown finished with error(s):\n%s", strings.Join(msgs, "\n"))
				return
			default:
			}
		}

		if len(msgs) > 0 {
			err = fmt.Errorf("shutdown finished with error(s):\n%s", strings.Join(msgs, "\n"))
		}
	})

	return err
}
