// Package config handles configuration for the shop ledger server: defaults,
// an optional dotenv file, environment variables, a JSON overlay and finally
// command-line flags, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config holds runtime settings for the server.
//
// Ledger settings (RPCURL, PrivateKey, ContractAddress, ABISource) are
// consumed once at startup by the ledger client. CipherPassphrase and
// CipherSalt must be identical on every instance reading the same contract.
// An empty DatabaseDSN disables the credential side index.
type Config struct {
	HTTPAddr       string
	GRPCHealthAddr string
	LogLevel       string

	RPCURL              string
	PrivateKey          string
	ContractAddress     string
	ABISource           string
	GasLimit            uint64
	ConfirmationTimeout time.Duration
	ReadBarrierTimeout  time.Duration

	CipherPassphrase string
	CipherSalt       string

	SecretKey               string
	SessionValidityDuration time.Duration
	RequireAdminToken       bool

	DatabaseDSN string

	S3AccessKey    string
	S3SecretKey    string
	S3Region       string
	S3BaseEndpoint string

	AllowedOrigins []string
	RateLimit      float64
	RateBurst      int
}

// LoadDefaults populates Config with local development values matching a
// stock Hardhat node. They are insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":5000"
	c.GRPCHealthAddr = ":50051"
	c.LogLevel = "info"

	c.RPCURL = "http://127.0.0.1:8545"
	c.PrivateKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	c.ContractAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	c.ABISource = ""
	c.GasLimit = 500000
	c.ConfirmationTimeout = 2 * time.Minute
	c.ReadBarrierTimeout = 5 * time.Second

	c.CipherPassphrase = "your-secret-passphrase"
	c.CipherSalt = "salt"

	c.SecretKey = "secretKey"
	c.SessionValidityDuration = 24 * time.Hour
	c.RequireAdminToken = false

	c.DatabaseDSN = ""

	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = ""

	c.AllowedOrigins = []string{"*"}
	c.RateLimit = 20
	c.RateBurst = 40
}

// Validate reports settings that make the process unable to serve.
func (c *Config) Validate() error {
	var errs []error
	required := map[string]string{
		"rpc url":           c.RPCURL,
		"private key":       c.PrivateKey,
		"contract address":  c.ContractAddress,
		"cipher passphrase": c.CipherPassphrase,
		"secret key":        c.SecretKey,
	}
	for name, v := range required {
		if strings.TrimSpace(v) == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
		}
	}
	if c.GasLimit == 0 {
		errs = append(errs, errors.New("gas limit must be positive"))
	}
	if c.ConfirmationTimeout <= 0 {
		errs = append(errs, errors.New("confirmation timeout must be positive"))
	}
	if c.ReadBarrierTimeout < 0 {
		errs = append(errs, errors.New("read barrier timeout must not be negative"))
	}
	if c.SessionValidityDuration <= 0 {
		errs = append(errs, errors.New("session validity must be positive"))
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then the dotenv file and
// environment, then an optional JSON file and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
