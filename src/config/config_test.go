package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-configured-secret-with-more-than-thirty-two-bytes")
	t.Setenv("AMAZON_PREAMBLE_LINES", "9")
	t.Setenv("SUMMARY_CACHE_TTL", "2m")
	t.Setenv("MAX_UPLOAD_SIZE_BYTES", "not-a-number")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("RATE_LIMIT_BURST", "x")

	LoadConfig()

	if Cfg.AmazonPreambleLines != 9 {
		t.Errorf("AmazonPreambleLines = %d, want 9", Cfg.AmazonPreambleLines)
	}
	if Cfg.SummaryCacheTTL != 2*time.Minute {
		t.Errorf("SummaryCacheTTL = %s, want 2m", Cfg.SummaryCacheTTL)
	}
	if Cfg.MaxUploadSizeBytes != 10*1024*1024 {
		t.Errorf("invalid upload size should fall back to 10MB, got %d", Cfg.MaxUploadSizeBytes)
	}
	if want := []string{"http://a.test", "http://b.test"}; !reflect.DeepEqual(Cfg.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", Cfg.AllowedOrigins, want)
	}
	if Cfg.RateLimitBurst != 30 {
		t.Errorf("invalid burst should fall back to 30, got %d", Cfg.RateLimitBurst)
	}
}

func TestLoadConfigNegativePreamble(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-configured-secret-with-more-than-thirty-two-bytes")
	t.Setenv("AMAZON_PREAMBLE_LINES", "-1")

	LoadConfig()

	if Cfg.AmazonPreambleLines != 11 {
		t.Errorf("negative preamble should fall back to 11, got %d", Cfg.AmazonPreambleLines)
	}
}
