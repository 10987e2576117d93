package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/electronshop/shopkeeper/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv loads the dotenv file named by -env (if any) into the process
// environment and then copies every recognized variable into config.
//
// Variables already present in the environment win over the dotenv file.
// Malformed numeric or duration values panic, like the JSON and flag layers.
func parseEnv(config *Config) {
	if file := flagx.EnvFileFlags(); file != "" {
		if err := godotenv.Load(file); err != nil {
			panic(err)
		}
	}

	setString(&config.HTTPAddr, "HTTP_ADDR")
	setString(&config.GRPCHealthAddr, "GRPC_HEALTH_ADDR")
	setString(&config.LogLevel, "LOG_LEVEL")

	setString(&config.RPCURL, "RPC_URL")
	setString(&config.PrivateKey, "PRIVATE_KEY")
	setString(&config.ContractAddress, "CONTRACT_ADDRESS")
	setString(&config.ABISource, "ABI_SOURCE")
	if v, ok := os.LookupEnv("GAS_LIMIT"); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			panic(err)
		}
		config.GasLimit = n
	}
	setDuration(&config.ConfirmationTimeout, "CONFIRMATION_TIMEOUT")
	setDuration(&config.ReadBarrierTimeout, "READ_BARRIER_TIMEOUT")

	setString(&config.CipherPassphrase, "CIPHER_PASSPHRASE")
	setString(&config.CipherSalt, "CIPHER_SALT")

	setString(&config.SecretKey, "SESSION_SECRET")
	setDuration(&config.SessionValidityDuration, "SESSION_VALIDITY")
	if v, ok := os.LookupEnv("REQUIRE_ADMIN_TOKEN"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		config.RequireAdminToken = b
	}

	setString(&config.DatabaseDSN, "DATABASE_DSN")

	setString(&config.S3AccessKey, "S3_ACCESS_KEY")
	setString(&config.S3SecretKey, "S3_SECRET_KEY")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_ENDPOINT")

	if v, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok {
		config.AllowedOrigins = splitList(v)
	}
	if v, ok := os.LookupEnv("RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			panic(err)
		}
		config.RateLimit = f
	}
	if v, ok := os.LookupEnv("RATE_BURST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		config.RateBurst = n
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
