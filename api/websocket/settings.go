package websocket

import (
	"time"

	"github.com/gaigenticai/regulens-autoscaler/pkg/config"
)

const (
	defaultWriteWait       = 10 * time.Second
	defaultPongWait        = 60 * time.Second
	defaultMaxMessageSize  = 512
	defaultClientBuffer    = 256
	defaultBroadcastBuffer = 256
	defaultMaxConnections  = 1000
)

// Settings holds the effective websocket tuning after applying defaults.
type Settings struct {
	WriteWait       time.Duration
	PongWait        time.Duration
	PingPeriod      time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	ClientBuffer    int
	BroadcastBuffer int
	MaxConnections  int
}

func NewSettings(cfg *config.WebSocketConfig) *Settings {
	s := &Settings{
		WriteWait:       defaultWriteWait,
		PongWait:        defaultPongWait,
		MaxMessageSize:  defaultMaxMessageSize,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		ClientBuffer:    defaultClientBuffer,
		BroadcastBuffer: defaultBroadcastBuffer,
		MaxConnections:  defaultMaxConnections,
	}

	if cfg != nil {
		if cfg.WriteTimeout > 0 {
			s.WriteWait = cfg.WriteTimeout
		}
		if cfg.PongTimeout > 0 {
			s.PongWait = cfg.PongTimeout
		}
		if cfg.MaxMessageSize > 0 {
			s.MaxMessageSize = cfg.MaxMessageSize
		}
		if cfg.ReadBufferSize > 0 {
			s.ReadBufferSize = cfg.ReadBufferSize
		}
		if cfg.WriteBufferSize > 0 {
			s.WriteBufferSize = cfg.WriteBufferSize
		}
		if cfg.ClientBuffer > 0 {
			s.ClientBuffer = cfg.ClientBuffer
		}
		if cfg.BroadcastBuffer > 0 {
			s.BroadcastBuffer = cfg.BroadcastBuffer
		}
		if cfg.MaxConnections > 0 {
			s.MaxConnections = cfg.MaxConnections
		}
	}

	s.PingPeriod = (s.PongWait * 9) / 10
	if cfg != nil && cfg.PingInterval > 0 && cfg.PingInterval < s.PongWait {
		s.PingPeriod = cfg.PingInterval
	}

	return s
}
