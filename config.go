package dbbackup

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultFileTemplate is the filename template used when none is configured.
const DefaultFileTemplate = "faturama.[[20060102]].bak.sql"

// Config holds everything the runner needs. Values come from environment
// variables, optionally seeded from a dotenv file; command line flags
// override individual fields afterwards.
type Config struct {
	// FileTemplate is the backup filename template, see ParseTemplate.
	FileTemplate string
	// RetentionCount is how many backups to keep. The newest are retained.
	RetentionCount int
	// BackupCommand is the external dump command, with an optional {path}
	// placeholder for the output file.
	BackupCommand string
	// BackupEnv holds extra KEY=VALUE pairs for the dump command, e.g.
	// PGPASSWORD.
	BackupEnv []string
	// BackupCron schedules periodic runs. Empty means run once and exit.
	BackupCron string
	// BackupTimeout bounds a single scheduled run, in minutes.
	BackupTimeout int
	// BackupOnStart runs a backup immediately when the schedule starts.
	BackupOnStart bool

	// StorageType selects the backend: "local", "s3" or "gcs".
	StorageType string
	// BackupDir is the local storage directory.
	BackupDir string

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3PathStyle bool
	S3Prefix    string

	GCSBucket          string
	GCSPrefix          string
	GCSCredentialsFile string

	// Notification settings. NotifyAddress empty disables notification.
	NotifyAddress string
	SMTPUsername  string
	SMTPPassword  string
	SMTPHost      string
	SMTPPort      int
}

// LoadConfig reads configuration from the environment. If envFile is
// non-empty it is loaded first without overriding variables already set.
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		FileTemplate:   getEnv("BACKUP_FILE_TEMPLATE", DefaultFileTemplate),
		RetentionCount: getEnvInt("BACKUP_RETENTION_COUNT", 7),
		BackupCommand:  getEnv("BACKUP_COMMAND", ""),
		BackupCron:     getEnv("BACKUP_CRON", ""),
		BackupTimeout:  getEnvInt("BACKUP_TIMEOUT", 30),
		BackupOnStart:  getEnvBool("BACKUP_ON_START", true),

		StorageType: getEnv("STORAGE_TYPE", StorageTypeLocal),
		BackupDir:   getEnv("BACKUP_DIR", "."),

		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3PathStyle: getEnvBool("S3_PATH_STYLE", false),
		S3Prefix:    getEnv("S3_PREFIX", ""),

		GCSBucket:          getEnv("GCS_BUCKET", ""),
		GCSPrefix:          getEnv("GCS_PREFIX", ""),
		GCSCredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),

		NotifyAddress: getEnv("NOTIFY_EMAIL", ""),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPHost:      getEnv("SMTP_HOST", "smtp.uni-stuttgart.de"),
		SMTPPort:      getEnvInt("SMTP_PORT", 587),
	}

	if env := getEnv("BACKUP_ENV", ""); env != "" {
		for _, kv := range strings.Split(env, ",") {
			kv = strings.TrimSpace(kv)
			if kv != "" {
				cfg.BackupEnv = append(cfg.BackupEnv, kv)
			}
		}
	}

	return cfg, nil
}

// Validate rejects configurations the runner cannot act on. It runs before
// any backup action, so a bad retention count or half-configured
// notification never reaches the backup logic.
func (c *Config) Validate() error {
	if c.RetentionCount <= 0 {
		return fmt.Errorf("retention count must be greater than 0, got %d", c.RetentionCount)
	}
	switch c.StorageType {
	case StorageTypeLocal, StorageTypeS3, StorageTypeGCS:
	default:
		return fmt.Errorf("unknown storage type %q", c.StorageType)
	}
	if c.NotifyAddress != "" && (c.SMTPUsername == "" || c.SMTPPassword == "") {
		return fmt.Errorf("notification address requires an SMTP username and password")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
