package push

import "context"

// Sender доставляет push-уведомления на зарегистрированные устройства.
// Возвращает число успешно отправленных сообщений; вызывающая сторона
// только логирует результат и никогда не откатывает операцию из-за него.
type Sender interface {
	Send(ctx context.Context, tokens []string, title, body string, data map[string]string) (int, error)
}

// NoopSender используется, когда брокер доставки недоступен: API продолжает
// работать, push просто отключен.
type NoopSender struct{}

var _ Sender = NoopSender{}

func (NoopSender) Send(_ context.Context, _ []string, _, _ string, _ map[string]string) (int, error) {
	return 0, nil
}
