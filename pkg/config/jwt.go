package config

type JwtConfig struct {
	Secret string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	Issuer string `env:"JWT_ISSUER" env-default:"simple-auth"`
}
