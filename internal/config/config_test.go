package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mara-shop/internal/constants"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := LoadWith(viper.New(), t.TempDir())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Cart.Store != constants.CartStoreDatabase {
		t.Fatalf("default store want database got %s", cfg.Cart.Store)
	}
	if cfg.Session.TTLHours != 720 || cfg.Cart.SnapshotRetentionDays != 30 {
		t.Fatalf("unexpected defaults %+v %+v", cfg.Session, cfg.Cart)
	}
	pricing, err := cfg.Cart.ToPricing()
	if err != nil {
		t.Fatalf("default pricing invalid: %v", err)
	}
	if !pricing.TaxRate.Equal(decimal.RequireFromString("0.08")) || !pricing.FreeShippingThreshold.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected pricing %+v", pricing)
	}
}

func TestLoadWithFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
server:
  port: "9090"
cart:
  store: " Redis "
  shipping_fee: "7.50"
queue:
  queues:
    critical: 3
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), content, 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	t.Setenv("CART_TAX_RATE", "0.2")

	cfg, err := LoadWith(viper.New(), dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("port want 9090 got %s", cfg.Server.Port)
	}
	if cfg.Cart.Store != constants.CartStoreRedis {
		t.Fatalf("store should be normalized, got %q", cfg.Cart.Store)
	}
	pricing, err := cfg.Cart.ToPricing()
	if err != nil {
		t.Fatalf("pricing failed: %v", err)
	}
	if !pricing.ShippingFee.Equal(decimal.RequireFromString("7.5")) {
		t.Fatalf("shipping fee want 7.5 got %s", pricing.ShippingFee)
	}
	if !pricing.TaxRate.Equal(decimal.RequireFromString("0.2")) {
		t.Fatalf("env tax rate want 0.2 got %s", pricing.TaxRate)
	}
	if cfg.Queue.Queues["critical"] != 3 {
		t.Fatalf("queue weights should come from file, got %v", cfg.Queue.Queues)
	}
}

func TestToPricingRejectsInvalidValues(t *testing.T) {
	if _, err := (CartConfig{TaxRate: "eight"}).ToPricing(); err == nil {
		t.Fatalf("non-numeric tax rate should fail")
	}
	if _, err := (CartConfig{ShippingFee: "-1"}).ToPricing(); err == nil {
		t.Fatalf("negative shipping fee should fail")
	}
	pricing, err := (CartConfig{}).ToPricing()
	if err != nil {
		t.Fatalf("empty config should fall back to defaults: %v", err)
	}
	if !pricing.ShippingFee.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("default shipping fee want 10 got %s", pricing.ShippingFee)
	}
}
