package fluentlogger

import (
	"fmt"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
)

// Config хранит настройки подключения к Fluent Bit.
type Config struct {
	Host      string // "127.0.0.1" или "fluent-bit" в Docker
	Port      int    // обычно 24224
	TagPrefix string // общий префикс тегов сервиса
	// Async включает буферизованную отправку: запись лога не блокирует запрос.
	Async        bool
	WriteTimeout time.Duration
	MaxRetry     int
}

func (c Config) fluentConfig() (fluent.Config, error) {
	if c.TagPrefix == "" {
		return fluent.Config{}, fmt.Errorf("fluent tag prefix is required")
	}
	fc := fluent.Config{
		FluentHost: c.Host,
		FluentPort: c.Port,
		TagPrefix:  c.TagPrefix,
		Async:      c.Async,
	}
	if c.WriteTimeout > 0 {
		fc.WriteTimeout = c.WriteTimeout
	}
	if c.MaxRetry > 0 {
		fc.MaxRetry = c.MaxRetry
	}
	return fc, nil
}

// NewClient создает клиента Fluent Bit. Соединение не проверяется:
// ошибки появятся при первой отправке.
func NewClient(cfg Config) (*fluent.Fluent, error) {
	fc, err := cfg.fluentConfig()
	if err != nil {
		return nil, err
	}
	client, err := fluent.New(fc)
	if err != nil {
		return nil, fmt.Errorf("failed to create fluent client: %w", err)
	}
	return client, nil
}
