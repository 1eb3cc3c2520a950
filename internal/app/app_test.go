package app

import (
	"testing"

	"tabreport/internal/config"
)

func TestCredentialResolver(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{
		Credentials: map[string]string{
			"prod_airtable.airtable_token": "at_secret",
			"prod_airtable.extra":          "x",
			"exports.http_bearer":          "web_secret",
		},
	}
	resolve := credentialResolver(func() *config.Config { return cfg })

	got := resolve("prod_airtable")
	if got["airtable_token"] != "at_secret" || got["extra"] != "x" || len(got) != 2 {
		t.Fatalf("prod_airtable = %v", got)
	}
	if got := resolve("exports"); got["http_bearer"] != "web_secret" {
		t.Fatalf("exports = %v", got)
	}
	if got := resolve(""); got != nil {
		t.Fatalf("empty ref = %v, want nil", got)
	}
	if got := resolve("unknown"); got != nil {
		t.Fatalf("unknown ref = %v, want nil", got)
	}
}

func TestCredentialResolverNilConfig(t *testing.T) {
	t.Parallel()
	resolve := credentialResolver(func() *config.Config { return nil })
	if got := resolve("any"); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}
