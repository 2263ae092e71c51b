package config

import (
	"os"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	PostgresDSN   string
	Redis         RedisConfig
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string

	// CastTimeout bounds the vote-cast transaction.
	CastTimeout time.Duration
	// ResultsCacheTTL bounds staleness of cached result projections.
	ResultsCacheTTL time.Duration
	// AuditBuffer sizes the admin audit event channel.
	AuditBuffer int
}

// RedisConfig captures Redis connection tuning. An empty URL disables Redis
// and the results cache falls through to the store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("BALLOTBOX_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}
	issuer := os.Getenv("JWT_ISSUER")
	if issuer == "" {
		issuer = "ballotbox"
	}
	audience := os.Getenv("JWT_AUDIENCE")
	if audience == "" {
		audience = "ballotbox-api"
	}

	return Server{
		Addr:        addr,
		PostgresDSN: os.Getenv("BALLOTBOX_POSTGRES_DSN"),
		Redis: RedisConfig{
			URL:          os.Getenv("BALLOTBOX_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		JWTSigningKey:   jwtSigningKey,
		JWTIssuer:       issuer,
		JWTAudience:     audience,
		CastTimeout:     5 * time.Second,
		ResultsCacheTTL: 30 * time.Second,
		AuditBuffer:     256,
	}
}
