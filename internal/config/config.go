// Package config reads process settings through viper. Connections live
// under postgres.connections in the config file, the same shape the rest of
// the tooling uses:
//
//	postgres:
//	  default_connection: analytics
//	  connections:
//	    analytics:
//	      host: localhost
//	      port: 5432
//	      database: district_analytics
//	      user: readonly
//	      password: ...
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// Postgres holds one named connection from the config file.
type Postgres struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	Schema   string
	SSLMode  string
}

// DSN renders a postgres URL for pgx.
func (p Postgres) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(p.User, p.Password),
		Host:   fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:   "/" + p.Database,
	}
	q := url.Values{}
	if p.SSLMode != "" {
		q.Set("sslmode", p.SSLMode)
	}
	if p.Schema != "" && p.Schema != "public" {
		q.Set("search_path", p.Schema)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// PostgresConnection resolves a named connection, falling back to
// postgres.default_connection when name is empty.
func PostgresConnection(name string) (Postgres, error) {
	if name == "" {
		name = viper.GetString("postgres.default_connection")
	}
	if name == "" {
		name = "analytics"
	}

	key := "postgres.connections." + name
	if !viper.IsSet(key) {
		return Postgres{}, fmt.Errorf("config: postgres connection %q not configured", name)
	}

	// Sub returns nil when the key holds a scalar instead of a map.
	sub := viper.Sub(key)
	if sub == nil {
		return Postgres{}, fmt.Errorf("config: postgres connection %q not configured", name)
	}
	p := Postgres{
		Host:     sub.GetString("host"),
		Port:     sub.GetInt("port"),
		Database: sub.GetString("database"),
		User:     sub.GetString("user"),
		Password: sub.GetString("password"),
		Schema:   sub.GetString("schema"),
		SSLMode:  sub.GetString("sslmode"),
	}
	if p.Port == 0 {
		p.Port = 5432
	}
	if p.Host == "" || p.Database == "" {
		return Postgres{}, fmt.Errorf("config: postgres connection %q is missing host or database", name)
	}
	return p, nil
}

// Settings are the routing subsystem's tunables.
type Settings struct {
	MaxRows             int
	RequestTimeout      time.Duration
	ConfidenceThreshold int
	CacheSize           int
	ListenAddr          string
	DefaultView         string
}

// LoadSettings reads tunables from viper with the documented defaults.
func LoadSettings() Settings {
	viper.SetDefault("routing.max_rows", 100)
	viper.SetDefault("routing.request_timeout", "30s")
	viper.SetDefault("routing.confidence_threshold", 1)
	viper.SetDefault("routing.cache_size", 256)
	viper.SetDefault("routing.default_view", "mv_software_usage_analytics_v4")
	viper.SetDefault("server.listen_addr", ":8080")

	return Settings{
		MaxRows:             viper.GetInt("routing.max_rows"),
		RequestTimeout:      viper.GetDuration("routing.request_timeout"),
		ConfidenceThreshold: viper.GetInt("routing.confidence_threshold"),
		CacheSize:           viper.GetInt("routing.cache_size"),
		ListenAddr:          viper.GetString("server.listen_addr"),
		DefaultView:         viper.GetString("routing.default_view"),
	}
}
