package hutch

import "log/slog"

// ClientConfig represents the configuration values for a single Client.
type ClientConfig struct {
	URI               string             `json:"URI" yaml:"URI"`
	AppID             string             `json:"AppID" yaml:"AppID"`
	Heartbeat         uint32             `json:"Heartbeat" yaml:"Heartbeat"`                 // seconds
	ConnectionTimeout uint32             `json:"ConnectionTimeout" yaml:"ConnectionTimeout"` // seconds
	MaxChannelCount   uint64             `json:"MaxChannelCount" yaml:"MaxChannelCount"`     // number of channels to be cached in the pool
	TLSConfig         *TLSConfig         `json:"TLSConfig" yaml:"TLSConfig"` // TLS settings for connections with AMQPS.
	CompressionConfig *CompressionConfig `json:"CompressionConfig" yaml:"CompressionConfig"`
	EncryptionConfig  *EncryptionConfig  `json:"EncryptionConfig" yaml:"EncryptionConfig"`
	Logger            *slog.Logger       `json:"-" yaml:"-"`
}

// TLSConfig represents settings for configuring TLS.
type TLSConfig struct {
	EnableTLS         bool   `json:"EnableTLS" yaml:"EnableTLS"` // Use TLSConfig to create connections with AMQPS uri.
	PEMCertLocation   string `json:"PEMCertLocation" yaml:"PEMCertLocation"`
	LocalCertLocation string `json:"LocalCertLocation" yaml:"LocalCertLocation"`
	CertServerName    string `json:"CertServerName" yaml:"CertServerName"`
}

// CompressionConfig allows you to configure compression based on options.
type CompressionConfig struct {
	Enabled bool   `json:"Enabled" yaml:"Enabled"`
	Type    string `json:"Type,omitempty" yaml:"Type,omitempty"`
}

// EncryptionConfig allows you to configure symmetric key encryption based on options.
type EncryptionConfig struct {
	Enabled           bool   `json:"Enabled" yaml:"Enabled"`
	Type              string `json:"Type,omitempty" yaml:"Type,omitempty"`
	Hashkey           []byte `json:"-" yaml:"-"`
	TimeConsideration uint32 `json:"TimeConsideration,omitempty" yaml:"TimeConsideration,omitempty"`
	Threads           uint8  `json:"Threads,omitempty" yaml:"Threads,omitempty"`
}

const (
	defaultHeartbeat         = 10
	defaultConnectionTimeout = 30
	defaultMaxChannelCount   = 10
)

// applyDefaults fills zero values with serviceable defaults.
func (cfg *ClientConfig) applyDefaults() {
	if cfg.Heartbeat == 0 {
		cfg.Heartbeat = defaultHeartbeat
	}
	if cfg.ConnectionTimeout == 0 {
		cfg.ConnectionTimeout = defaultConnectionTimeout
	}
	if cfg.MaxChannelCount == 0 {
		cfg.MaxChannelCount = defaultMaxChannelCount
	}
	if cfg.AppID == "" {
		cfg.AppID = "hutch"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
}
