// Package config provides the configuration options of the application,
// populated from command-line flags with environment-variable overrides.
package config

import (
	"flag"
	"os"
	"strconv"
)

// Options holds the configuration values for the application.
type Options struct {
	// RunAddr defines the server's listening address (ip:port).
	RunAddr string

	// BaseURL is the base used when building short links in responses.
	BaseURL string

	// DatabaseDSN holds the PostgreSQL connection string. When empty the
	// service runs on the in-memory store.
	DatabaseDSN string

	// JWTSecret signs issued tokens.
	JWTSecret string

	// CodeLength is the length of generated short codes.
	CodeLength int

	// GRPCPort is the gRPC listening port. Zero disables the gRPC server.
	GRPCPort int

	// EnablePprof indicates whether to start the pprof listener.
	EnablePprof bool

	// EnableHTTPS enables TLS via autocert.
	EnableHTTPS bool
}

var options = &Options{}

func init() {
	flag.StringVar(&options.RunAddr, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.BaseURL, "b", "http://localhost:8080", "result base url")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.JWTSecret, "j", "supersecretkey", "jwt signing secret")
	flag.IntVar(&options.CodeLength, "l", 6, "generated short code length")
	flag.IntVar(&options.GRPCPort, "g", 0, "grpc port, 0 to disable")
	flag.BoolVar(&options.EnablePprof, "p", false, "enable pprof")
	flag.BoolVar(&options.EnableHTTPS, "s", false, "enable https")
}

// Parse parses the command-line flags and environment variables and returns
// the resulting configuration. Environment variables win over flags.
func Parse() *Options {
	flag.Parse()

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.RunAddr = serverAddress
	}

	if baseURL := os.Getenv("BASE_URL"); baseURL != "" {
		options.BaseURL = baseURL
	}

	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		options.JWTSecret = secret
	}

	if codeLength := os.Getenv("CODE_LENGTH"); codeLength != "" {
		if n, err := strconv.Atoi(codeLength); err == nil && n > 0 {
			options.CodeLength = n
		}
	}

	if grpcPort := os.Getenv("GRPC_PORT"); grpcPort != "" {
		if n, err := strconv.Atoi(grpcPort); err == nil && n > 0 {
			options.GRPCPort = n
		}
	}

	if enableHTTPS := os.Getenv("ENABLE_HTTPS"); enableHTTPS != "" {
		httpsMode, err := strconv.ParseBool(enableHTTPS)
		if err != nil {
			options.EnableHTTPS = false
		}

		options.EnableHTTPS = httpsMode
	}

	return options
}
