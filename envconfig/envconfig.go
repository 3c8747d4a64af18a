package envconfig

import (
	"github.com/caarlos0/env/v6"
)

type TeseoServiceEnvConfig struct {
	DeviceID     string `env:"DEVICE_ID" envDefault:"teseo-0"`
	SerialDevice string `env:"SERIAL_DEVICE" envDefault:"/dev/ttyAMA0"`
	SerialBaud   int    `env:"SERIAL_BAUD" envDefault:"115200"`
	TCPAddress   string `env:"TCP_ADDRESS"`
	ClickHouseDB string `env:"CLICKHOUSE_DATABASE_URL"`
	NatsConn     string `env:"NATS"`
	MetricsPort  uint16 `env:"METRICS_PORT" envDefault:"9090"`
}

func ReadTeseoServiceEnv() (*TeseoServiceEnvConfig, error) {
	cfg := &TeseoServiceEnvConfig{}
	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
