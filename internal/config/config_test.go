package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	if cfg.HTTPAddr == "" || cfg.PostgresDSN == "" || cfg.RedisAddr == "" {
		t.Errorf("missing defaults: %+v", cfg)
	}
	if cfg.WalletShards != 5 {
		t.Errorf("expected 5 wallet shards by default, got %d", cfg.WalletShards)
	}
	if len(cfg.KafkaBrokers) == 0 {
		t.Error("expected at least one default broker")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WALLET_SHARDS", "12")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092 ,")
	t.Setenv("AUDIT_WORKERS", "not-a-number")

	cfg := Load()
	if cfg.WalletShards != 12 {
		t.Errorf("expected 12 shards, got %d", cfg.WalletShards)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Errorf("bad broker parse: %v", cfg.KafkaBrokers)
	}
	if cfg.AuditWorkers != 8 {
		t.Errorf("invalid int should fall back to default, got %d", cfg.AuditWorkers)
	}
}
