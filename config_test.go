package dbbackup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, DefaultFileTemplate, cfg.FileTemplate)
	assert.Equal(t, 7, cfg.RetentionCount)
	assert.Equal(t, StorageTypeLocal, cfg.StorageType)
	assert.Equal(t, ".", cfg.BackupDir)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Empty(t, cfg.NotifyAddress)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("BACKUP_FILE_TEMPLATE", "db.[[20060102]].sql")
	t.Setenv("BACKUP_RETENTION_COUNT", "3")
	t.Setenv("BACKUP_COMMAND", "pg_dump -f {path} mydb")
	t.Setenv("BACKUP_ENV", "PGPASSWORD=secret, PGHOST=localhost")
	t.Setenv("STORAGE_TYPE", "s3")
	t.Setenv("S3_BUCKET", "backup-bucket")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "db.[[20060102]].sql", cfg.FileTemplate)
	assert.Equal(t, 3, cfg.RetentionCount)
	assert.Equal(t, "pg_dump -f {path} mydb", cfg.BackupCommand)
	assert.Equal(t, []string{"PGPASSWORD=secret", "PGHOST=localhost"}, cfg.BackupEnv)
	assert.Equal(t, StorageTypeS3, cfg.StorageType)
	assert.Equal(t, "backup-bucket", cfg.S3Bucket)
}

func TestLoadConfigMissingEnvFile(t *testing.T) {
	_, err := LoadConfig("does-not-exist.env")
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			RetentionCount: 7,
			StorageType:    StorageTypeLocal,
		}
	}

	t.Run("ok", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("zero retention", func(t *testing.T) {
		cfg := valid()
		cfg.RetentionCount = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative retention", func(t *testing.T) {
		cfg := valid()
		cfg.RetentionCount = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown storage type", func(t *testing.T) {
		cfg := valid()
		cfg.StorageType = "ftp"
		assert.Error(t, cfg.Validate())
	})

	t.Run("notify without credentials", func(t *testing.T) {
		cfg := valid()
		cfg.NotifyAddress = "ops@example.com"
		assert.Error(t, cfg.Validate())

		cfg.SMTPUsername = "ops"
		assert.Error(t, cfg.Validate())

		cfg.SMTPPassword = "secret"
		assert.NoError(t, cfg.Validate())
	})
}
