package config

import (
	"fmt"
	"net/url"
)

type DbConfig struct {
	Host     string `env:"PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"PG_PORT" env-default:"5432"`
	Database string `env:"PG_DATABASE" env-default:"auth_db"`
	User     string `env:"PG_USER" env-default:"auth"`
	Password string `env:"PG_PASSWORD" env-default:"pwd"`
}

// URL returns the pgx connection string.
func (d DbConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		url.QueryEscape(d.User), url.QueryEscape(d.Password),
		d.Host, d.Port, d.Database)
}
