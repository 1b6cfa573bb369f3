package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/blueprint-hub/hub-server/gate"
	"github.com/blueprint-hub/hub-server/moderation"
)

const (
	ProviderOpenAI      = "openai"
	ProviderRekognition = "rekognition"
)

type Automod struct {
	Enabled  bool
	Provider string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration

	// RejectConfidence is the Rekognition label confidence, 0 to 100, at
	// which a category counts as violated.
	RejectConfidence float64
}

type S3 struct {
	Region    string
	Bucket    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

type Config struct {
	ListenAddr string
	Debug      bool

	// DatabaseURL selects the postgres stores. Empty uses in-memory stores.
	DatabaseURL string

	// RedisURL selects the redis rate limiter. Empty limits in memory.
	RedisURL string

	// S3.Bucket empty keeps uploads in memory.
	S3 S3

	Automod       Automod
	Policies      map[gate.ContentType]gate.Policy
	ReviewURLBase string

	SlackWebhookURL string
	UserCacheTTL    time.Duration
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "listen",
			Usage:   "address for the http server",
			Value:   ":8080",
			EnvVars: []string{"LISTEN_ADDR"},
		},
		&cli.BoolFlag{
			Name:    "debug",
			Usage:   "enable debug logging",
			EnvVars: []string{"DEBUG"},
		},
		&cli.StringFlag{
			Name:    "database-url",
			Usage:   "postgres connection string",
			EnvVars: []string{"DATABASE_URL"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection string for rate limiting",
			EnvVars: []string{"REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "s3-region",
			Value:   "us-east-1",
			EnvVars: []string{"S3_REGION", "AWS_REGION"},
		},
		&cli.StringFlag{
			Name:    "s3-bucket",
			EnvVars: []string{"S3_BUCKET"},
		},
		&cli.StringFlag{
			Name:    "s3-endpoint",
			Usage:   "custom endpoint, e.g. for localstack",
			EnvVars: []string{"S3_ENDPOINT"},
		},
		&cli.StringFlag{
			Name:    "s3-access-key",
			EnvVars: []string{"S3_ACCESS_KEY"},
		},
		&cli.StringFlag{
			Name:    "s3-secret-key",
			EnvVars: []string{"S3_SECRET_KEY"},
		},
		&cli.BoolFlag{
			Name:    "automod-enabled",
			Usage:   "moderate user content before it is published",
			EnvVars: []string{"AUTOMOD_ENABLED"},
		},
		&cli.StringFlag{
			Name:    "automod-provider",
			Usage:   "moderation backend: openai or rekognition",
			Value:   ProviderOpenAI,
			EnvVars: []string{"AUTOMOD_PROVIDER"},
		},
		&cli.StringFlag{
			Name:    "automod-api-key",
			Usage:   "moderation API key, required by the openai provider",
			EnvVars: []string{"AUTOMOD_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "automod-base-url",
			EnvVars: []string{"AUTOMOD_BASE_URL"},
		},
		&cli.DurationFlag{
			Name:    "automod-timeout",
			Value:   10 * time.Second,
			EnvVars: []string{"AUTOMOD_TIMEOUT"},
		},
		&cli.Float64Flag{
			Name:    "automod-reject-confidence",
			Value:   70,
			EnvVars: []string{"AUTOMOD_REJECT_CONFIDENCE"},
		},
		&cli.StringFlag{
			Name:    "automod-blueprint-policy",
			Value:   string(gate.PolicyReview),
			EnvVars: []string{"AUTOMOD_BLUEPRINT_POLICY"},
		},
		&cli.StringFlag{
			Name:    "automod-collection-policy",
			Value:   string(gate.PolicyReject),
			EnvVars: []string{"AUTOMOD_COLLECTION_POLICY"},
		},
		&cli.StringFlag{
			Name:    "automod-comment-policy",
			Value:   string(gate.PolicyReview),
			EnvVars: []string{"AUTOMOD_COMMENT_POLICY"},
		},
		&cli.StringFlag{
			Name:    "review-url-base",
			Usage:   "admin panel root used in moderator notifications",
			EnvVars: []string{"REVIEW_URL_BASE"},
		},
		&cli.StringFlag{
			Name:    "slack-webhook-url",
			Usage:   "incoming webhook for moderator notifications; logged when empty",
			EnvVars: []string{"SLACK_WEBHOOK_URL"},
		},
		&cli.DurationFlag{
			Name:    "user-cache-ttl",
			Value:   time.Minute,
			EnvVars: []string{"USER_CACHE_TTL"},
		},
	}
}

// FromContext reads the flags registered by Flags.
func FromContext(cctx *cli.Context) (*Config, error) {
	policies := make(map[gate.ContentType]gate.Policy)
	for contentType, flag := range map[gate.ContentType]string{
		gate.ContentTypeBlueprint:  "automod-blueprint-policy",
		gate.ContentTypeCollection: "automod-collection-policy",
		gate.ContentTypeComment:    "automod-comment-policy",
	} {
		policy, err := gate.ParsePolicy(cctx.String(flag))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", flag, err)
		}
		policies[contentType] = policy
	}

	cfg := &Config{
		ListenAddr:  cctx.String("listen"),
		Debug:       cctx.Bool("debug"),
		DatabaseURL: cctx.String("database-url"),
		RedisURL:    cctx.String("redis-url"),
		S3: S3{
			Region:    cctx.String("s3-region"),
			Bucket:    cctx.String("s3-bucket"),
			Endpoint:  cctx.String("s3-endpoint"),
			AccessKey: cctx.String("s3-access-key"),
			SecretKey: cctx.String("s3-secret-key"),
		},
		Automod: Automod{
			Enabled:          cctx.Bool("automod-enabled"),
			Provider:         strings.ToLower(cctx.String("automod-provider")),
			APIKey:           cctx.String("automod-api-key"),
			BaseURL:          cctx.String("automod-base-url"),
			Timeout:          cctx.Duration("automod-timeout"),
			RejectConfidence: cctx.Float64("automod-reject-confidence"),
		},
		Policies:        policies,
		ReviewURLBase:   cctx.String("review-url-base"),
		SlackWebhookURL: cctx.String("slack-webhook-url"),
		UserCacheTTL:    cctx.Duration("user-cache-ttl"),
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the server cannot start with. A missing API key
// is only an error when moderation would use it.
func (c *Config) Validate() error {
	if !c.Automod.Enabled {
		return nil
	}

	switch c.Automod.Provider {
	case ProviderOpenAI:
		if c.Automod.APIKey == "" {
			return &moderation.ConfigurationError{
				Setting: "automod.api_key",
				Reason:  "is required when automod is enabled",
			}
		}
	case ProviderRekognition:
		if c.Automod.RejectConfidence < 0 || c.Automod.RejectConfidence > 100 {
			return &moderation.ConfigurationError{
				Setting: "automod.reject_confidence",
				Reason:  "must be between 0 and 100",
			}
		}
	default:
		return &moderation.ConfigurationError{
			Setting: "automod.provider",
			Reason:  fmt.Sprintf("%q is not supported", c.Automod.Provider),
		}
	}

	if c.Automod.Timeout <= 0 {
		return &moderation.ConfigurationError{
			Setting: "automod.timeout",
			Reason:  "must be positive",
		}
	}
	return nil
}

func (c *Config) GateConfig() gate.Config {
	return gate.Config{
		Enabled:       c.Automod.Enabled,
		Policies:      c.Policies,
		ReviewURLBase: c.ReviewURLBase,
	}
}
