package push

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
)

// NATSSender публикует push-сообщения в NATS; внешний доставщик подписан
// на subject и сам общается с провайдером мобильных уведомлений.
type NATSSender struct {
	conn    *nats.Conn
	subject string
}

var _ Sender = (*NATSSender)(nil)

func NewNATSSender(conn *nats.Conn, subject string) *NATSSender {
	return &NATSSender{conn: conn, subject: subject}
}

type pushMessage struct {
	Token string            `json:"token"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Send публикует отдельное сообщение на каждый токен устройства
func (s *NATSSender) Send(_ context.Context, tokens []string, title, body string, data map[string]string) (int, error) {
	delivered := 0
	for _, token := range tokens {
		payload, err := json.Marshal(pushMessage{
			Token: token,
			Title: title,
			Body:  body,
			Data:  data,
		})
		if err != nil {
			return delivered, err
		}
		if err := s.conn.Publish(s.subject, payload); err != nil {
			return delivered, err
		}
		delivered++
	}
	return delivered, nil
}
