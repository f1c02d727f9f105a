package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs    int
	SnapshotTTLSecs int

	// PoolAccount funds activations and receives repayments; VaultAccount is
	// the custody identity policies are parked under while locked.
	PoolAccount  string
	VaultAccount string

	// AdminIdentity is granted the admin role at startup so the service is
	// operable on a fresh database.
	AdminIdentity string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "policylend"),
		MySQLUser: getenv("MYSQL_USER", "policylend"),
		MySQLPass: getenv("MYSQL_PASS", "policylend"),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:   getenvInt("REDIS_DB", 0),

		IdempTTLSecs:    getenvInt("IDEMPOTENCY_TTL_SECONDS", 300),
		SnapshotTTLSecs: getenvInt("SNAPSHOT_TTL_SECONDS", 3600),

		PoolAccount:   getenv("POOL_ACCOUNT", "00000000000000000000000000000001"),
		VaultAccount:  getenv("VAULT_ACCOUNT", "00000000000000000000000000000002"),
		AdminIdentity: getenv("ADMIN_IDENTITY", ""),
	}
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.PoolAccount == "" || c.VaultAccount == "" {
		return errors.New("missing POOL_ACCOUNT/VAULT_ACCOUNT")
	}
	if c.PoolAccount == c.VaultAccount {
		return errors.New("POOL_ACCOUNT and VAULT_ACCOUNT must differ")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
