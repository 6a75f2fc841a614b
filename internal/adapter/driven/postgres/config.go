package postgres

import (
	"net"
	"net/url"
	"strconv"
	"time"
)

// Config holds the connection settings a pool is built from. It is read only
// when a pool is constructed, so one Config can back any number of rebuilds.
type Config struct {
	Host     string
	Port     int
	DBName   string
	User     string
	Password string
	SSLMode  string

	// Optional tuning; zero values fall back to package defaults.
	MaxConns          int32
	ConnectTimeout    time.Duration
	HealthCheckPeriod time.Duration
}

// DSN renders the config as a postgres:// URL. Credentials are escaped, so
// passwords may contain any character.
func (c Config) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.DBName,
	}
	if c.SSLMode != "" {
		q := url.Values{}
		q.Set("sslmode", c.SSLMode)
		u.RawQuery = q.Encode()
	}
	return u.String()
}
