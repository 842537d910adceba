package config

import "fmt"

type ServerConfig struct {
	Port           int      `env:"PORT" env-default:"4000"`
	Env            string   `env:"ENV" env-default:"development"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" env-default:"http://localhost:5173"`
}

// IsProduction reports whether the server runs with the production cookie
// policy (Secure, SameSite=None).
func (c ServerConfig) IsProduction() bool {
	return c.Env == "production"
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
