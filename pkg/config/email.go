package config

// SmtpConfig configures the outbound mail transport. An empty Host disables
// SMTP delivery; notices are logged instead.
type SmtpConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" env-default:"587"`
	TLS      bool   `env:"SMTP_TLS" env-default:"true"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM" env-default:"Raghav Verse <no-reply@localhost>"`
}
