package config

import (
	"flag"
	"os"

	"github.com/electronshop/shopkeeper/internal/flagx"
)

var knownFlags = []string{"-a", "-g", "-l", "-r", "-k", "-x", "-abi", "-gas", "-t", "-p", "-salt", "-s", "-d"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string     HTTP bind address (e.g. ":5000")
//	-g string     gRPC health bind address
//	-l string     log level
//	-r string     ledger JSON-RPC endpoint
//	-k string     hex signing key
//	-x string     contract address
//	-abi string   ABI source: file path or s3://bucket/key
//	-gas uint     gas limit for writes
//	-t duration   confirmation timeout (e.g. "90s")
//	-p string     cipher passphrase
//	-salt string  cipher salt
//	-s string     session token secret
//	-d string     PostgreSQL DSN for the credential side index
//
// os.Args is filtered first so that -c/-config and -env do not collide.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run HTTP server")
	fs.StringVar(&config.GRPCHealthAddr, "g", config.GRPCHealthAddr, "address and port to run gRPC health server")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.RPCURL, "r", config.RPCURL, "ledger JSON-RPC URL")
	fs.StringVar(&config.PrivateKey, "k", config.PrivateKey, "signing key (hex)")
	fs.StringVar(&config.ContractAddress, "x", config.ContractAddress, "contract address")
	fs.StringVar(&config.ABISource, "abi", config.ABISource, "ABI source")
	fs.Uint64Var(&config.GasLimit, "gas", config.GasLimit, "gas limit for writes")
	fs.DurationVar(&config.ConfirmationTimeout, "t", config.ConfirmationTimeout, "confirmation timeout")
	fs.StringVar(&config.CipherPassphrase, "p", config.CipherPassphrase, "cipher passphrase")
	fs.StringVar(&config.CipherSalt, "salt", config.CipherSalt, "cipher salt")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "session token secret")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
