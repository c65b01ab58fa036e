package tracing

import "testing"

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LANGFUSE_HOST", "")
	t.Setenv("LANGFUSE_PUBLIC_KEY", "pk-lf-1")
	t.Setenv("LANGFUSE_SECRET_KEY", "")

	cfg := ConfigFromEnv()
	if cfg.Host != DefaultHost {
		t.Errorf("Host = %q, want %q", cfg.Host, DefaultHost)
	}
	if cfg.Enabled() {
		t.Error("Enabled() = true with only a public key")
	}
}

func TestSetup_Disabled(t *testing.T) {
	t.Parallel()

	handler, flush, ok := Setup(Config{PublicKey: "pk-lf-1"})
	if ok || handler != nil || flush != nil {
		t.Errorf("Setup without secret key = (%v, %v, %v), want disabled", handler, flush != nil, ok)
	}
}
