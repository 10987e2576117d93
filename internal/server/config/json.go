package config

import (
	"encoding/json"
	"os"

	"github.com/electronshop/shopkeeper/internal/flagx"
	"github.com/electronshop/shopkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file. Durations
// accept "90s" style strings or integer nanoseconds. Only keys present in the
// file override the current values.
type JsonConfig struct {
	HTTPAddr       *string `json:"http_addr"`
	GRPCHealthAddr *string `json:"grpc_health_addr"`
	LogLevel       *string `json:"log_level"`

	RPCURL              *string         `json:"rpc_url"`
	PrivateKey          *string         `json:"private_key"`
	ContractAddress     *string         `json:"contract_address"`
	ABISource           *string         `json:"abi_source"`
	GasLimit            *uint64         `json:"gas_limit"`
	ConfirmationTimeout *timex.Duration `json:"confirmation_timeout"`
	ReadBarrierTimeout  *timex.Duration `json:"read_barrier_timeout"`

	CipherPassphrase *string `json:"cipher_passphrase"`
	CipherSalt       *string `json:"cipher_salt"`

	SecretKey               *string         `json:"secret_key"`
	SessionValidityDuration *timex.Duration `json:"session_validity_duration"`
	RequireAdminToken       *bool           `json:"require_admin_token"`

	DatabaseDSN *string `json:"database_dsn"`

	S3AccessKey    *string `json:"s3_access_key"`
	S3SecretKey    *string `json:"s3_secret_key"`
	S3Region       *string `json:"s3_region"`
	S3BaseEndpoint *string `json:"s3_base_endpoint"`

	AllowedOrigins []string `json:"allowed_origins"`
	RateLimit      *float64 `json:"rate_limit"`
	RateBurst      *int     `json:"rate_burst"`
}

// parseJson overlays the file named by -c / -config onto config. It does
// nothing when the flag is absent and panics on unreadable or invalid JSON.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	overlay(&config.HTTPAddr, c.HTTPAddr)
	overlay(&config.GRPCHealthAddr, c.GRPCHealthAddr)
	overlay(&config.LogLevel, c.LogLevel)

	overlay(&config.RPCURL, c.RPCURL)
	overlay(&config.PrivateKey, c.PrivateKey)
	overlay(&config.ContractAddress, c.ContractAddress)
	overlay(&config.ABISource, c.ABISource)
	overlay(&config.GasLimit, c.GasLimit)
	if c.ConfirmationTimeout != nil {
		config.ConfirmationTimeout = c.ConfirmationTimeout.Duration
	}
	if c.ReadBarrierTimeout != nil {
		config.ReadBarrierTimeout = c.ReadBarrierTimeout.Duration
	}

	overlay(&config.CipherPassphrase, c.CipherPassphrase)
	overlay(&config.CipherSalt, c.CipherSalt)

	overlay(&config.SecretKey, c.SecretKey)
	if c.SessionValidityDuration != nil {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	overlay(&config.RequireAdminToken, c.RequireAdminToken)

	overlay(&config.DatabaseDSN, c.DatabaseDSN)

	overlay(&config.S3AccessKey, c.S3AccessKey)
	overlay(&config.S3SecretKey, c.S3SecretKey)
	overlay(&config.S3Region, c.S3Region)
	overlay(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}
	overlay(&config.RateLimit, c.RateLimit)
	overlay(&config.RateBurst, c.RateBurst)
}

func overlay[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
