package grant

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is queried by the engine for per-grant lifetimes and for the
// concrete Backend and TokenGenerator bindings. Config implementations are
// resolved once, in NewEngine, and held for the engine's lifetime.
type Config interface {
	// ExpiryTime returns the non-negative lifetime, in seconds, configured
	// for the given grant kind.
	ExpiryTime(kind grantKind) (int64, error)

	// Backend returns the persistence+identity collaborator.
	Backend() Backend

	// TokenGeneration returns the token-material collaborator.
	TokenGeneration() TokenGenerator
}

// configKeys maps each grantKind onto the koanf duration key that holds its
// lifetime.
var configKeys = map[grantKind]string{
	PasswordCredentials: "grant.passwordCredentials.ttl",
	ClientCredentials:   "grant.clientCredentials.ttl",
	CodeGrant:           "grant.codeGrant.ttl",
}

// defaultTTLs are used to seed the koanf-backed Config with sane
// out-of-the-box lifetimes; every one of them can be overridden by a config
// file or a GRANT__ prefixed environment variable.
var defaultTTLs = map[string]any{
	"grant.passwordCredentials.ttl": "1h",
	"grant.clientCredentials.ttl":   "1h",
	"grant.codeGrant.ttl":           "10m",
}

// KoanfConfig is the ambient Config implementation, backed by
// github.com/knadh/koanf/v2. Lifetimes are loaded in the following order
// (later sources override earlier): built-in defaults, an optional YAML
// file, then GRANT__ prefixed environment variables.
type KoanfConfig struct {
	k       *koanf.Koanf
	backend Backend
	tokgen  TokenGenerator
}

// NewKoanfConfig constructs a KoanfConfig bound to the given Backend and
// TokenGenerator. configFile may be empty, in which case only defaults and
// environment variables are consulted.
func NewKoanfConfig(backend Backend, tokgen TokenGenerator, configFile string) (*KoanfConfig, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultTTLs, "."), nil); err != nil {
		return nil, fmt.Errorf("grant: loading default config: %w", err)
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("grant: loading config file %q: %w", configFile, err)
		}
	}

	if err := k.Load(env.Provider("GRANT__", ".", transformEnv), nil); err != nil {
		return nil, fmt.Errorf("grant: loading env config: %w", err)
	}

	return &KoanfConfig{k: k, backend: backend, tokgen: tokgen}, nil
}

// transformEnv converts GRANT__GRANT__CODE_GRANT__TTL to
// grant.codeGrant.ttl: the GRANT__ prefix is stripped, double underscores
// become dots, and single underscores within a segment become camelCase.
func transformEnv(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, "GRANT__"))
	segments := strings.Split(s, "__")
	for i, segment := range segments {
		parts := strings.Split(segment, "_")
		for j := 1; j < len(parts); j++ {
			parts[j] = capitalize(parts[j])
		}
		segments[i] = strings.Join(parts, "")
	}
	return strings.Join(segments, ".")
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// ExpiryTime implements Config.
func (c *KoanfConfig) ExpiryTime(kind grantKind) (int64, error) {
	key, ok := configKeys[kind]
	if !ok {
		return 0, fmt.Errorf("grant: unknown grant kind %q", kind)
	}
	d := c.k.Duration(key)
	if d < 0 {
		return 0, fmt.Errorf("grant: negative ttl configured for %q", key)
	}
	return int64(d / time.Second), nil
}

// Backend implements Config.
func (c *KoanfConfig) Backend() Backend {
	return c.backend
}

// TokenGeneration implements Config.
func (c *KoanfConfig) TokenGeneration() TokenGenerator {
	return c.tokgen
}
