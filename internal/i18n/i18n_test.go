package i18n

import "testing"

func TestEveryLanguageCoversEveryKey(t *testing.T) {
	t.Parallel()
	en := catalogs["en"]
	for _, lang := range Languages() {
		c, ok := catalogs[lang]
		if !ok {
			t.Fatalf("Languages() names %q but no catalog exists", lang)
		}
		for key := range en {
			if _, ok := c[key]; !ok {
				t.Errorf("language %q missing key %q", lang, key)
			}
		}
		for key := range c {
			if _, ok := en[key]; !ok {
				t.Errorf("language %q has key %q absent from English", lang, key)
			}
		}
	}
}

func TestTFallsBackToEnglish(t *testing.T) {
	t.Parallel()
	if got := T("ko", "report_title"); got != "Data Analysis Report" {
		t.Fatalf("unknown language should fall back to English, got %q", got)
	}
	if got := T("es", "report_title"); got != "Informe de Análisis de Datos" {
		t.Fatalf("T(es) = %q", got)
	}
	if got := T("en", "no_such_key"); got != "no_such_key" {
		t.Fatalf("unknown key should echo the key, got %q", got)
	}
}

func TestSupported(t *testing.T) {
	t.Parallel()
	for _, lang := range Languages() {
		if !Supported(lang) {
			t.Errorf("Supported(%q) = false", lang)
		}
	}
	if Supported("ko") {
		t.Error("Supported(ko) = true, want false")
	}
}

func TestLabelsResolvesFullCatalog(t *testing.T) {
	t.Parallel()
	labels := Labels("de")
	if len(labels) != len(catalogs["en"]) {
		t.Fatalf("Labels(de) has %d keys, want %d", len(labels), len(catalogs["en"]))
	}
	if labels["mean"] != "Mittelwert" {
		t.Fatalf("Labels(de)[mean] = %q", labels["mean"])
	}

	// Unknown language resolves to the English catalog.
	fallback := Labels("xx")
	if fallback["mean"] != "Mean" {
		t.Fatalf("Labels(xx)[mean] = %q", fallback["mean"])
	}
}
