package web

import "fmt"

// Config represents the results browser configuration
type Config struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port" validate:"gte=0,lte=65535"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() Config {
	return Config{
		Host: "localhost",
		Port: 8080,
	}
}

// Addr returns the listen address
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
