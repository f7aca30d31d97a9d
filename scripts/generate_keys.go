//go:build ignore

// Writes a starter .env for compliance-track with freshly generated secrets.
// Run with: go run scripts/generate_keys.go [-out .env] [-api-keys 2]
package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

func secret(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		fmt.Fprintf(os.Stderr, "reading random bytes: %v\n", err)
		os.Exit(1)
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

func main() {
	out := flag.String("out", "", "file to write; stdout when empty")
	apiKeys := flag.Int("api-keys", 1, "number of API keys to generate")
	flag.Parse()

	keys := make([]string, 0, *apiKeys)
	for i := 0; i < *apiKeys; i++ {
		keys = append(keys, secret(24))
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.OpenFile(*out, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err != nil {
			fmt.Fprintf(os.Stderr, "creating %s: %v\n", *out, err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	fmt.Fprintln(w, "# Authentication")
	fmt.Fprintln(w, "AUTH_ENABLED=true")
	fmt.Fprintf(w, "JWT_SECRET_KEY=%s\n", secret(32))
	fmt.Fprintf(w, "JWT_REFRESH_SECRET_KEY=%s\n", secret(32))
	if len(keys) > 0 {
		fmt.Fprintf(w, "API_KEYS=%s\n", strings.Join(keys, ","))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "# Catalog and history")
	fmt.Fprintln(w, "MONGODB_ENABLED=true")
	fmt.Fprintln(w, "MONGODB_URI=mongodb://localhost:27017")
	fmt.Fprintln(w, "MONGODB_DATABASE=compliance_track")
	fmt.Fprintln(w, "MONGODB_SEED_REFERENCE_DATA=true")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "# Sessions")
	fmt.Fprintln(w, "SESSION_TTL=2h")
	fmt.Fprintln(w, "SESSION_MAX=10000")

	if *out != "" {
		fmt.Fprintf(os.Stderr, "wrote %s; keep it out of version control\n", *out)
	}
}
