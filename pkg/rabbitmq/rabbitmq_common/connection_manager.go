package rabbitmq_common

import (
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConnectionManager держит одно соединение RabbitMQ на процесс
// и в фоне восстанавливает его после обрыва.
type ConnectionManager struct {
	cfg        Config
	dial       func(url string) (*amqp.Connection, error)
	connection *amqp.Connection
	mutex      sync.RWMutex
	logger     Logger

	stop     chan struct{}
	stopOnce sync.Once
}

var (
	managerInstance *ConnectionManager
	managerErr      error
	once            sync.Once
)

// GetManager возвращает общий для процесса менеджер, создавая его при первом вызове.
// Если первое подключение не удалось, ошибка запоминается и возвращается всем вызывающим.
func GetManager(cfg Config, logger Logger) (*ConnectionManager, error) {
	once.Do(func() {
		managerInstance, managerErr = NewConnectionManager(cfg, logger)
	})
	return managerInstance, managerErr
}

// NewConnectionManager создает отдельный менеджер и сразу подключается.
func NewConnectionManager(cfg Config, logger Logger) (*ConnectionManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = NewNoopLogger()
	}
	m := &ConnectionManager{
		cfg:    cfg,
		dial:   amqp.Dial,
		logger: logger,
		stop:   make(chan struct{}),
	}
	if _, err := m.getConnection(); err != nil {
		logger.Error(err, "Initial RabbitMQ connection failed")
		return nil, fmt.Errorf("initial connection failed: %w", err)
	}
	go m.watch(cfg.reconnectDelay())
	return m, nil
}

func (m *ConnectionManager) getConnection() (*amqp.Connection, error) {
	m.mutex.RLock()
	if m.connection != nil && !m.connection.IsClosed() {
		conn := m.connection
		m.mutex.RUnlock()
		return conn, nil
	}
	m.mutex.RUnlock()

	m.mutex.Lock()
	defer m.mutex.Unlock()

	// Другая горутина могла переподключиться, пока мы ждали блокировку.
	if m.connection != nil && !m.connection.IsClosed() {
		return m.connection, nil
	}

	m.logger.Debug("ConnectionManager: connecting")
	conn, err := m.dial(m.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("ConnectionManager: failed to dial RabbitMQ: %w", err)
	}
	m.connection = conn
	m.logger.Info("ConnectionManager: connected")
	return conn, nil
}

// GetChannel открывает новый канал на общем соединении.
func (m *ConnectionManager) GetChannel() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := m.getConnection()
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return conn, nil, fmt.Errorf("ConnectionManager: failed to open a channel: %w", err)
	}
	return conn, ch, nil
}

func (m *ConnectionManager) watch(delay time.Duration) {
	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
		}

		m.mutex.RLock()
		healthy := m.connection != nil && !m.connection.IsClosed()
		m.mutex.RUnlock()
		if healthy {
			continue
		}

		m.logger.Warn("ConnectionManager: connection is closed, reconnecting")
		if _, err := m.getConnection(); err != nil {
			m.logger.Error(err, "ConnectionManager: reconnect failed", "retry_in", delay.String())
		}
	}
}

// Close останавливает фоновое переподключение и закрывает соединение.
func (m *ConnectionManager) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.connection == nil || m.connection.IsClosed() {
		return nil
	}
	if err := m.connection.Close(); err != nil {
		m.logger.Error(err, "ConnectionManager: failed to close connection")
		return err
	}
	m.logger.Debug("ConnectionManager: connection closed")
	return nil
}
