package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration for the web app and the pipeline functions.
type Config struct {
	Port            string         `mapstructure:"port"`
	Env             string         `mapstructure:"env"`
	CORSAllowOrigin []string       `mapstructure:"-"`
	SecretKey       string         `mapstructure:"secret_key"`
	TemplatesDir    string         `mapstructure:"templates_dir"`
	StaticDir       string         `mapstructure:"static_dir"`
	Session         SessionConfig  `mapstructure:"session"`
	Users           UsersConfig    `mapstructure:"users"`
	Auth            AuthConfig     `mapstructure:"auth"`
	Predict         PredictConfig  `mapstructure:"predict"`
	Mail            MailConfig     `mapstructure:"mail"`
	Storage         StorageConfig  `mapstructure:"storage"`
	Pipeline        PipelineConfig `mapstructure:"pipeline"`
}

// SessionConfig selects the server-side session backend.
type SessionConfig struct {
	Store      string        `mapstructure:"store"`
	RedisAddr  string        `mapstructure:"redis_addr"`
	CookieName string        `mapstructure:"cookie_name"`
	TTL        time.Duration `mapstructure:"ttl"`
}

// UsersConfig selects where user records live.
type UsersConfig struct {
	Store           string `mapstructure:"store"`
	DatabaseURL     string `mapstructure:"database_url"`
	MongoURI        string `mapstructure:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection"`
}

// AuthConfig carries identity provider settings.
type AuthConfig struct {
	FirebaseProjectID  string `mapstructure:"firebase_project_id"`
	GoogleClientID     string `mapstructure:"google_client_id"`
	GoogleClientSecret string `mapstructure:"google_client_secret"`
	GoogleRedirectURL  string `mapstructure:"google_redirect_url"`
}

// PredictConfig carries the retention model and recommendation settings.
type PredictConfig struct {
	ArtifactsPath  string  `mapstructure:"artifacts_path"`
	OpenAIAPIKey   string  `mapstructure:"openai_api_key"`
	OpenAIModel    string  `mapstructure:"openai_model"`
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// MailConfig carries SMTP settings for the survey email.
type MailConfig struct {
	Server        string `mapstructure:"server"`
	Port          int    `mapstructure:"port"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	SurveyFormURL string `mapstructure:"survey_form_url"`
}

// StorageConfig selects the object store backend and bucket names.
type StorageConfig struct {
	Type                 string `mapstructure:"type"`
	LocalDir             string `mapstructure:"local_dir"`
	AWSRegion            string `mapstructure:"aws_region"`
	ResumeBucket         string `mapstructure:"resume_bucket"`
	JobDescriptionBucket string `mapstructure:"job_description_bucket"`
	ResultsBucket        string `mapstructure:"results_bucket"`
	SSEKMSKeyID          string `mapstructure:"sse_kms_key_id"`
	MinIOEndpoint        string `mapstructure:"minio_endpoint"`
	MinIOAccessKeyID     string `mapstructure:"minio_access_key_id"`
	MinIOSecretKey       string `mapstructure:"minio_secret_access_key"`
	MinIOUseSSL          bool   `mapstructure:"minio_use_ssl"`
}

// PipelineConfig carries resume-screening settings.
type PipelineConfig struct {
	SummaryProvider   string        `mapstructure:"summary_provider"`
	BedrockModelID    string        `mapstructure:"bedrock_model_id"`
	GeminiAPIKey      string        `mapstructure:"gemini_api_key"`
	GeminiModel       string        `mapstructure:"gemini_model"`
	SummaryMaxTokens  int           `mapstructure:"summary_max_tokens"`
	NormalizeNewlines bool          `mapstructure:"normalize_newlines"`
	SummarizeFunction string        `mapstructure:"summarize_function"`
	TextDetector      string        `mapstructure:"text_detector"`
	PollInitial       time.Duration `mapstructure:"poll_initial"`
	PollMaxInterval   time.Duration `mapstructure:"poll_max_interval"`
	PollTimeout       time.Duration `mapstructure:"poll_timeout"`
	SQSQueueURL       string        `mapstructure:"sqs_queue_url"`
	WorkerConcurrency int           `mapstructure:"worker_concurrency"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	cfg, err := load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return cfg
}

func load() (Config, error) {
	// Best-effort load of local env files for dev convenience.
	for _, path := range []string{".env", "cmd/.env"} {
		_ = godotenv.Load(path)
	}

	v := viper.New()
	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return Config{}, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Env = normalizeEnv(cfg.Env)
	cfg.CORSAllowOrigin = splitAndTrim(v.GetString("cors_allow_origins"))
	cfg.Storage.Type = normalizeStoreType(cfg.Storage.Type)
	cfg.Users.Store = strings.ToLower(strings.TrimSpace(cfg.Users.Store))
	cfg.Session.Store = strings.ToLower(strings.TrimSpace(cfg.Session.Store))
	cfg.Pipeline.SummaryProvider = strings.ToLower(strings.TrimSpace(cfg.Pipeline.SummaryProvider))
	cfg.Pipeline.TextDetector = strings.ToLower(strings.TrimSpace(cfg.Pipeline.TextDetector))

	if cfg.Env == "production" && cfg.SecretKey == defaultSecretKey {
		log.Printf("SECRET_KEY is not set; using the default key in production")
	}
	return cfg, nil
}

const defaultSecretKey = "default_secret_key"

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("env", "dev")
	v.SetDefault("cors_allow_origins", "*")
	v.SetDefault("secret_key", defaultSecretKey)
	v.SetDefault("templates_dir", "")
	v.SetDefault("static_dir", "static")

	v.SetDefault("session.store", "memory")
	v.SetDefault("session.redis_addr", "localhost:6379")
	v.SetDefault("session.cookie_name", "session")
	v.SetDefault("session.ttl", "744h")

	v.SetDefault("users.store", "memory")
	v.SetDefault("users.database_url", "")
	v.SetDefault("users.mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("users.mongo_database", "my_database")
	v.SetDefault("users.mongo_collection", "users")

	v.SetDefault("auth.firebase_project_id", "")
	v.SetDefault("auth.google_client_id", "")
	v.SetDefault("auth.google_client_secret", "")
	v.SetDefault("auth.google_redirect_url", "")

	v.SetDefault("predict.artifacts_path", "model_artifacts.json")
	v.SetDefault("predict.openai_api_key", "")
	v.SetDefault("predict.openai_model", "gpt-4")
	v.SetDefault("predict.rate_limit_rps", 0)
	v.SetDefault("predict.rate_limit_burst", 0)

	v.SetDefault("mail.server", "smtp.gmail.com")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.survey_form_url", "https://forms.gle/sbFx3bZSXLREa1Uu8")

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_dir", "./data")
	v.SetDefault("storage.aws_region", "us-east-1")
	v.SetDefault("storage.resume_bucket", "candidate-resume-processing-bucket")
	v.SetDefault("storage.job_description_bucket", "candidate-job-description-bucket")
	v.SetDefault("storage.results_bucket", "resume-analysis-results-bucket")
	v.SetDefault("storage.sse_kms_key_id", "")
	v.SetDefault("storage.minio_endpoint", "localhost:9000")
	v.SetDefault("storage.minio_access_key_id", "")
	v.SetDefault("storage.minio_secret_access_key", "")
	v.SetDefault("storage.minio_use_ssl", false)

	v.SetDefault("pipeline.summary_provider", "bedrock")
	v.SetDefault("pipeline.bedrock_model_id", "anthropic.claude-v2:1")
	v.SetDefault("pipeline.gemini_api_key", "")
	v.SetDefault("pipeline.gemini_model", "gemini-2.5-flash")
	v.SetDefault("pipeline.summary_max_tokens", 400)
	v.SetDefault("pipeline.normalize_newlines", false)
	v.SetDefault("pipeline.summarize_function", "")
	v.SetDefault("pipeline.text_detector", "textract")
	v.SetDefault("pipeline.poll_initial", "1s")
	v.SetDefault("pipeline.poll_max_interval", "10s")
	v.SetDefault("pipeline.poll_timeout", "10m")
	v.SetDefault("pipeline.sqs_queue_url", "")
	v.SetDefault("pipeline.worker_concurrency", 4)
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"port":                            "PORT",
		"env":                             "ENV",
		"cors_allow_origins":              "CORS_ALLOW_ORIGINS",
		"secret_key":                      "SECRET_KEY",
		"templates_dir":                   "TEMPLATES_DIR",
		"static_dir":                      "STATIC_DIR",
		"session.store":                   "SESSION_STORE",
		"session.redis_addr":              "REDIS_ADDR",
		"session.cookie_name":             "SESSION_COOKIE_NAME",
		"session.ttl":                     "SESSION_TTL",
		"users.store":                     "USER_STORE",
		"users.database_url":              "DATABASE_URL",
		"users.mongo_uri":                 "MONGO_URI",
		"users.mongo_database":            "MONGO_DATABASE",
		"users.mongo_collection":          "MONGO_COLLECTION",
		"auth.firebase_project_id":        "FIREBASE_PROJECT_ID",
		"auth.google_client_id":           "GOOGLE_CLIENT_ID",
		"auth.google_client_secret":       "GOOGLE_CLIENT_SECRET",
		"auth.google_redirect_url":        "GOOGLE_REDIRECT_URL",
		"predict.artifacts_path":          "MODEL_ARTIFACTS_PATH",
		"predict.openai_api_key":          "OPENAI_API_KEY",
		"predict.openai_model":            "OPENAI_MODEL",
		"predict.rate_limit_rps":          "RATE_LIMIT_PREDICT_RPS",
		"predict.rate_limit_burst":        "RATE_LIMIT_PREDICT_BURST",
		"mail.server":                     "MAIL_SERVER",
		"mail.port":                       "MAIL_PORT",
		"mail.username":                   "EMAIL_USER",
		"mail.password":                   "EMAIL_PASS",
		"mail.survey_form_url":            "SURVEY_FORM_URL",
		"storage.type":                    "OBJECT_STORE",
		"storage.local_dir":               "LOCAL_STORE_DIR",
		"storage.aws_region":              "AWS_REGION",
		"storage.resume_bucket":           "RESUME_BUCKET",
		"storage.job_description_bucket":  "JOB_DESCRIPTION_BUCKET",
		"storage.results_bucket":          "RESULTS_BUCKET",
		"storage.sse_kms_key_id":          "SSE_KMS_KEY_ID",
		"storage.minio_endpoint":          "MINIO_ENDPOINT",
		"storage.minio_access_key_id":     "MINIO_ACCESS_KEY_ID",
		"storage.minio_secret_access_key": "MINIO_SECRET_ACCESS_KEY",
		"storage.minio_use_ssl":           "MINIO_USE_SSL",
		"pipeline.summary_provider":       "SUMMARY_PROVIDER",
		"pipeline.bedrock_model_id":       "BEDROCK_MODEL_ID",
		"pipeline.gemini_api_key":         "GEMINI_API_KEY",
		"pipeline.gemini_model":           "GEMINI_MODEL",
		"pipeline.summary_max_tokens":     "SUMMARY_MAX_TOKENS",
		"pipeline.normalize_newlines":     "SUMMARY_NORMALIZE_NEWLINES",
		"pipeline.summarize_function":     "SUMMARIZE_FUNCTION",
		"pipeline.text_detector":          "TEXT_DETECTOR",
		"pipeline.poll_initial":           "EXTRACT_POLL_INITIAL",
		"pipeline.poll_max_interval":      "EXTRACT_POLL_MAX_INTERVAL",
		"pipeline.poll_timeout":           "EXTRACT_POLL_TIMEOUT",
		"pipeline.sqs_queue_url":          "SQS_QUEUE_URL",
		"pipeline.worker_concurrency":     "WORKER_CONCURRENCY",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}
	return nil
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "minio":
		return "minio"
	default:
		return "local"
	}
}

// IsDevLike reports whether missing infrastructure may fall back to in-memory implementations.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}
