/*
Psmithd starts the grammar toolkit's HTTP API and begins listening for
requests.

Usage:

	psmithd [flags]

Once started, psmithd listens for HTTP requests and serves them per
internal/webapi's REST surface: log in, submit a grammar, fetch its computed
tables and conflicts, and run a token stream through either recognizer.

If a JWT token secret is not given, one will be automatically generated and
seeded from crypto/rand. As a consequence, in this mode of operation all
tokens are rendered invalid as soon as the server shuts down. This is
suitable for testing, but a secret should be given via config or environment
variable if running in production.

The flags are:

	-v, --version
		Give the current version of parsesmith and then exit.

	-c, --config FILE
		Load configuration from the given TOML file. If not given, defaults
		are used for every setting. Either way, the operator password is
		generated and printed once at startup.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address, overriding config's http.bind_addr. Must
		be in BIND_ADDRESS:PORT or :PORT format.

	-s, --secret TOKEN_SECRET
		Use the provided secret for signing JWT tokens, overriding config's
		http.jwt_secret. A secret shorter than 32 bytes is extended by
		repeating it until it is at least 32 bytes; one longer than 64 bytes
		is rejected.
*/
package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/dekarrin/parsesmith/internal/config"
	"github.com/dekarrin/parsesmith/internal/store"
	"github.com/dekarrin/parsesmith/internal/trace"
	"github.com/dekarrin/parsesmith/internal/version"
	"github.com/dekarrin/parsesmith/internal/webapi"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"
)

const (
	EnvListen = "PARSESMITHD_LISTEN_ADDRESS"
	EnvSecret = "PARSESMITHD_TOKEN_SECRET"
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of parsesmith and then exit.")
	flagConfig  = pflag.StringP("config", "c", "", "Load configuration from the given TOML file.")
	flagListen  = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagSecret  = pflag.StringP("secret", "s", "", "Use the given secret for JWT signing.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("psmithd (parsesmith v%s)\n", version.Current)
		return
	}

	var cfg config.Config
	if *flagConfig != "" {
		var err error
		cfg, err = config.Load(*flagConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL could not load config: %s\n", err)
			os.Exit(1)
		}
	}
	cfg = cfg.FillDefaults()

	if listenAddr := os.Getenv(EnvListen); listenAddr != "" {
		cfg.HTTP.BindAddr = listenAddr
	}
	if pflag.Lookup("listen").Changed {
		cfg.HTTP.BindAddr = *flagListen
	}

	secretStr := os.Getenv(EnvSecret)
	if cfg.HTTP.JWTSecret != "" {
		secretStr = cfg.HTTP.JWTSecret
	}
	if pflag.Lookup("secret").Changed {
		secretStr = *flagSecret
	}

	secret, err := resolveSecret(secretStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL %s\n", err)
		os.Exit(1)
	}

	sink, closeSink, err := cfg.BuildSink()
	if err != nil {
		log.Fatalf("FATAL could not open trace sink: %s", err)
	}
	defer closeSink()
	trace.SetDefault(sink)

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		log.Fatalf("FATAL could not open store: %s", err)
	}
	defer st.Close()

	password, err := randomPassword()
	if err != nil {
		log.Fatalf("FATAL could not generate operator password: %s", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("FATAL could not hash operator password: %s", err)
	}
	log.Printf("INFO  Operator account is %q, password %q (shown once)", "admin", password)

	api := webapi.API{
		Store:       st,
		Secret:      secret,
		Operator:    webapi.Operator{Username: "admin", PasswordHash: string(hash)},
		UnauthDelay: 0,
	}

	log.Printf("INFO  Starting psmithd %s on %s...", version.Current, cfg.HTTP.BindAddr)
	if err := http.ListenAndServe(cfg.HTTP.BindAddr, api.Router()); err != nil {
		log.Fatalf("FATAL server exited: %s", err)
	}
}

// resolveSecret pads a given secret up to the minimum key size by repeating
// it, or generates a fresh random one if none was given.
func resolveSecret(given string) ([]byte, error) {
	if given == "" {
		secret := make([]byte, config.MaxJWTSecretSize)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate token secret: %w", err)
		}
		log.Printf("WARN  Using generated token secret; all tokens issued will become invalid at shutdown")
		return secret, nil
	}

	secret := []byte(given)
	for len(secret) < config.MinJWTSecretSize {
		doubled := make([]byte, len(secret)*2)
		copy(doubled, secret)
		copy(doubled[len(secret):], secret)
		secret = doubled
	}
	if len(secret) > config.MaxJWTSecretSize {
		return nil, fmt.Errorf("token secret is %d bytes, but it must be <= %d bytes", len(secret), config.MaxJWTSecretSize)
	}
	return secret, nil
}

// randomPassword generates a URL-safe operator password for the single
// configured account, printed once at startup so there is some way to log in
// without a pre-provisioned credential store.
func randomPassword() (string, error) {
	raw := make([]byte, 18)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
