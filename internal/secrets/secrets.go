// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of
// plain-text files, with environment variables as a fallback. Each file in
// the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: semantic-scholar-api-key, ncbi-api-key,
// unpaywall-email, groq-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// envFallbacks maps secret key names to the environment variables checked
// when no key file is present.
var envFallbacks = map[string]string{
	"semantic-scholar-api-key": "SEMANTIC_SCHOLAR_API_KEY",
	"ncbi-api-key":             "NCBI_API_KEY",
	"unpaywall-email":          "UNPAYWALL_EMAIL",
	"groq-api-key":             "GROQ_API_KEY",
}

// Load reads all files in dir and returns a map of filename to trimmed
// contents, merged with environment-variable fallbacks (file wins). A
// missing directory is not an error; unreadable files produce a warning
// on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	secrets := make(map[string]string)
	for key, env := range envFallbacks {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			secrets[key] = v
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return secrets, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
