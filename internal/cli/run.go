package cli

import (
	"fmt"
	"time"
)

// Options contains the configuration shared by the CLI commands.
type Options struct {
	// Content is a YAML content file; it wins over Variant.
	Content string
	Variant string

	Seed   uint64
	Seeded bool

	// SessionsDir is the file store directory, used when RedisAddr is empty.
	SessionsDir string
	RedisAddr   string
	RedisTTL    time.Duration

	// EncryptionKey seals every snapshot at rest when set. RedactAnswers
	// keeps the trivia answer buffer out of the store.
	EncryptionKey string
	RedactAnswers bool

	LogLevel  string
	LogFormat string

	// Play only.
	SessionID string
	JSON      bool
	Headless  bool
	Fresh     bool
}

// Validate rejects flag combinations that cannot work together.
func (o Options) Validate() error {
	if o.JSON && o.Headless {
		return fmt.Errorf("--json and --headless cannot be used together")
	}
	if o.RedisTTL < 0 {
		return fmt.Errorf("--redis-ttl must not be negative")
	}
	return nil
}
