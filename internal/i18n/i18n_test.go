package i18n

import "testing"

func TestDetectLanguage(t *testing.T) {
	if DetectLanguage("en-US,en;q=0.9") != "en" {
		t.Fatalf("expected en")
	}
	if DetectLanguage("PT-br") != "pt" {
		t.Fatalf("expected pt for PT-br")
	}
	if DetectLanguage("fr-FR,fr;q=0.8,es;q=0.5") != "es" {
		t.Fatalf("expected es fallback past unsupported fr")
	}
	if DetectLanguage("") != "en" {
		t.Fatalf("expected default en")
	}
}

func TestTranslations(t *testing.T) {
	if T("en", "required") != "Required" {
		t.Fatalf("expected Required")
	}
	if T("es", "required") != "Obligatorio" {
		t.Fatalf("expected Obligatorio")
	}
	// unknown code -> fallback to code
	if T("en", "__nope__") != "__nope__" {
		t.Fatalf("expected fallback to code")
	}
	// unknown language -> fallback to en translation if exists
	if T("de", "required") != "Required" {
		t.Fatalf("expected en fallback for de lang")
	}
}
