package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/i474232898/aqi-display/internal/aqi"
	"github.com/i474232898/aqi-display/internal/config"
)

var errNotConnected = errors.New("mqtt client not connected")

// Publisher forwards every processed reading to a broker topic.
type Publisher struct {
	client    paho.Client
	topic     string
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

// Reading is the message published for one snapshot.
type Reading struct {
	City        string             `json:"city"`
	StationTime string             `json:"station_time,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
	AQI         *float64           `json:"aqi,omitempty"`
	Category    aqi.Category       `json:"category"`
	IAQI        map[string]float64 `json:"iaqi,omitempty"`
}

func NewPublisher(cfg *config.AppConfig, logger *slog.Logger) *Publisher {
	p := &Publisher{
		topic:  cfg.MQTTTopic,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ paho.Client) {
		p.setConnected(true)
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort)
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		p.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	p.client = paho.NewClient(opts)
	return p
}

// Connect waits for the first connection. It respects ctx and Disconnect.
func (p *Publisher) Connect(ctx context.Context) error {
	select {
	case <-p.stopCh:
		return fmt.Errorf("publisher stopped")
	default:
	}
	if p.IsConnected() {
		return nil
	}

	token := p.client.Connect()
	if err := p.wait(ctx, token); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

// Publish sends the reading for snap. Snapshots without station data are
// skipped.
func (p *Publisher) Publish(ctx context.Context, snap aqi.Snapshot) error {
	if !snap.HasData() {
		return nil
	}
	if !p.IsConnected() {
		return errNotConnected
	}

	data, err := json.Marshal(NewReading(snap))
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	token := p.client.Publish(p.topic, 1, true, data)
	if err := p.wait(ctx, token); err != nil {
		return fmt.Errorf("publish reading to %s: %w", p.topic, err)
	}

	p.logger.Debug("published reading", "topic", p.topic)
	return nil
}

func (p *Publisher) wait(ctx context.Context, token paho.Token) error {
	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			return token.Error()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stopCh:
			return fmt.Errorf("publisher stopped")
		default:
		}
	}
}

// IsConnected returns whether the client is connected.
func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	connected := p.connected
	p.mu.RUnlock()
	return connected && p.client.IsConnected()
}

// Disconnect stops the publisher. Safe to call more than once.
func (p *Publisher) Disconnect() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	if p.client != nil {
		p.client.Disconnect(250)
	}
	p.setConnected(false)
	p.logger.Info("mqtt disconnected")
}

func (p *Publisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}

// NewReading flattens a snapshot into the published message.
func NewReading(snap aqi.Snapshot) Reading {
	r := Reading{Timestamp: snap.Timestamp, Category: aqi.CategoryEmpty}
	st := snap.Station
	if st == nil {
		return r
	}

	r.City = st.City.Name
	r.StationTime = st.Time.S
	if st.AQI.Valid {
		v := st.AQI.Float
		r.AQI = &v
		r.Category = aqi.AQIClass(v).Category
	}

	keys := make([]string, 0, len(st.IAQI))
	for k := range st.IAQI {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v, ok := st.Reading(k); ok {
			if r.IAQI == nil {
				r.IAQI = make(map[string]float64, len(keys))
			}
			r.IAQI[k] = v
		}
	}
	return r
}
