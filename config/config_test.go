package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("TOKENS_PER_UNIT", "")
	t.Setenv("MAX_SUPPLY", "")
	t.Setenv("RECONCILE_CRON", "")
	t.Setenv("ALLOW_CERTIFICATE_REISSUE", "")

	LoadConfig()

	assert.Equal(t, "sqlite", AppConfig.DBDriver)
	assert.Equal(t, uint64(1000), AppConfig.TokensPerUnit)
	assert.Equal(t, uint64(1250000), AppConfig.MaxSupply)
	assert.False(t, AppConfig.AllowCertificateReissue)
	assert.Equal(t, "@every 10m", AppConfig.ReconcileCron)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("TOKENS_PER_UNIT", "250")
	t.Setenv("MAX_SUPPLY", "1000000")
	t.Setenv("ALLOW_CERTIFICATE_REISSUE", "true")
	t.Setenv("SALT_ROUND", "twelve")

	LoadConfig()

	assert.Equal(t, "postgres", AppConfig.DBDriver)
	assert.Equal(t, uint64(250), AppConfig.TokensPerUnit)
	assert.Equal(t, uint64(1000000), AppConfig.MaxSupply)
	assert.True(t, AppConfig.AllowCertificateReissue)
	assert.Equal(t, 10, AppConfig.SaltRound, "unparsable values fall back to the default")
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("YD_BOOL", "maybe")
	t.Setenv("YD_UINT", "-3")

	assert.True(t, getEnvBool("YD_BOOL", true))
	assert.Equal(t, uint64(9), getEnvUint64("YD_UINT", 9))
	assert.Equal(t, "fallback", getEnv("YD_UNSET", "fallback"))
}
