package config

import "time"

type Config struct {
	Gateway  GatewayConfig  `yaml:"gateway" json:"gateway"`
	Webhooks WebhooksConfig `yaml:"webhooks" json:"webhooks"`
}

type GatewayConfig struct {
	Port int `yaml:"port" json:"port"`
}

// WebhooksConfig describes the external webhook endpoints the relay
// forwards chat messages to, in failover order.
type WebhooksConfig struct {
	Endpoints []string `yaml:"endpoints" json:"endpoints"` // primary first

	MessageTimeout time.Duration `yaml:"messageTimeout" json:"messageTimeout"` // per delivery attempt
	ProbeTimeout   time.Duration `yaml:"probeTimeout" json:"probeTimeout"`     // per health probe

	// MaxAudioBase64Bytes caps base64-encoded audio payloads. Oversized
	// audio is truncated to this length before forwarding.
	MaxAudioBase64Bytes int `yaml:"maxAudioBase64Bytes" json:"maxAudioBase64Bytes"`
}

func DefaultConfig() *Config {
	return &Config{
		Gateway: GatewayConfig{
			Port: 5000,
		},
		Webhooks: WebhooksConfig{
			Endpoints: []string{
				"https://n8neditor.unitmedia.cloud/webhook/portfolio",
				"https://n8neditor.unitmedia.cloud/webhook-test/portfolio",
				"http://localhost:5678/webhook/portfolio",
			},
			MessageTimeout:      10 * time.Second,
			ProbeTimeout:        5 * time.Second,
			MaxAudioBase64Bytes: 512_000,
		},
	}
}
