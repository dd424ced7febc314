package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ALERT_TIER_1_PRICE", "")
	t.Setenv("RAZORPAY_KEY_ID", "")
	t.Setenv("RAZORPAY_KEY_SECRET", "")
	t.Setenv("FCM_SERVER_KEY", "")

	cfg := LoadConfig()

	assert.Equal(t, [3]int64{100, 200, 300}, cfg.Pricing.TierPrices)
	assert.Equal(t, [3]int{1, 3, 10}, cfg.Pricing.TierHospitals)
	assert.Equal(t, 15.0, cfg.Dispatch.RadiusKm)
	assert.Equal(t, 10*time.Second, cfg.Dispatch.SendTimeout)
	assert.Equal(t, "INR", cfg.Payment.Currency)
	assert.False(t, cfg.PaymentLive())
	assert.False(t, cfg.NotificationLive())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("ALERT_TIER_2_PRICE", "250")
	t.Setenv("DISPATCH_RADIUS_KM", "20.5")
	t.Setenv("DISPATCH_SEND_TIMEOUT", "bogus")
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test")
	t.Setenv("RAZORPAY_KEY_SECRET", "s3cret")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg := LoadConfig()

	assert.Equal(t, int64(250), cfg.Pricing.TierPrices[1])
	assert.Equal(t, 20.5, cfg.Dispatch.RadiusKm)
	assert.Equal(t, 10*time.Second, cfg.Dispatch.SendTimeout)
	assert.True(t, cfg.PaymentLive())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_ID", "")
	t.Setenv("RAZORPAY_KEY_SECRET", "")
	require.NoError(t, LoadConfig().Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"prices not increasing", func(c *Config) { c.Pricing.TierPrices = [3]int64{100, 50, 300} }, "ALERT_TIER_2_PRICE"},
		{"zero hospital count", func(c *Config) { c.Pricing.TierHospitals = [3]int{0, 3, 10} }, "ALERT_TIER_1_HOSPITALS"},
		{"zero reaper interval", func(c *Config) { c.Dispatch.ReaperInterval = 0 }, "DISPATCH_REAPER_INTERVAL"},
		{"zero concurrency", func(c *Config) { c.Dispatch.Concurrency = 0 }, "DISPATCH_CONCURRENCY"},
		{"key id without secret", func(c *Config) { c.Payment.KeyID = "rzp_test" }, "RAZORPAY_KEY_SECRET"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "postgres" }, "DB_DRIVER"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := LoadConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
