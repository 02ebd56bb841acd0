package normalize

import (
	"testing"

	"buscacasas/models"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw          string
		wantPrice    float64
		wantCurrency models.Currency
	}{
		{"U$S 120.500", 120500, models.CurrencyUSD},
		{"$ 2.300.000", 2300000, models.CurrencyUYU},
		{"USD 85.000", 85000, models.CurrencyUSD},
		{"U$S 1.250.000", 1250000, models.CurrencyUSD},
		{"$ 45.000", 45000, models.CurrencyUYU},
		{"Consultar", 0, models.CurrencyUYU},
		{"", 0, models.CurrencyUYU},
		{"U$S", 0, models.CurrencyUSD},
	}

	for _, tt := range tests {
		price, currency := ParsePrice(tt.raw)
		if price != tt.wantPrice || currency != tt.wantCurrency {
			t.Errorf("ParsePrice(%q) = (%.0f, %s); want (%.0f, %s)",
				tt.raw, price, currency, tt.wantPrice, tt.wantCurrency)
		}
	}
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		raw              string
		wantDepartment   string
		wantNeighborhood string
	}{
		{"Pocitos, Montevideo", "Montevideo", "Pocitos"},
		{"Canelones", "Canelones", ""},
		{"Carrasco , Montevideo", "Montevideo", "Carrasco"},
		{"", "Montevideo", ""},
		{"Centro, Ciudad de la Costa, Canelones", "Canelones", "Centro"},
	}

	for _, tt := range tests {
		department, neighborhood := ParseLocation(tt.raw)
		if department != tt.wantDepartment || neighborhood != tt.wantNeighborhood {
			t.Errorf("ParseLocation(%q) = (%q, %q); want (%q, %q)",
				tt.raw, department, neighborhood, tt.wantDepartment, tt.wantNeighborhood)
		}
	}
}

func TestTotalArea(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		none bool
	}{
		{"85 m² totales", 85, false},
		{"Terreno de 300 m2", 300, false},
		{"2 dormitorios 60 m² y 70 m²", 60, false}, // first match wins
		{"sin superficie", 0, true},
	}

	for _, tt := range tests {
		got := TotalArea(tt.raw)
		if tt.none {
			if got != nil {
				t.Errorf("TotalArea(%q) = %v; want nil", tt.raw, *got)
			}
			continue
		}
		if got == nil || *got != tt.want {
			t.Errorf("TotalArea(%q) = %v; want %.0f", tt.raw, got, tt.want)
		}
	}
}

func TestBedroomsAndBathrooms(t *testing.T) {
	text := "Apartamento 3 dormitorios 2 baños 90 m²"

	if got := Bedrooms(text); got == nil || *got != 3 {
		t.Errorf("Bedrooms = %v; want 3", got)
	}
	if got := Bathrooms(text); got == nil || *got != 2 {
		t.Errorf("Bathrooms = %v; want 2", got)
	}

	if got := Bedrooms("2 hab luminosas"); got == nil || *got != 2 {
		t.Errorf("Bedrooms(hab) = %v; want 2", got)
	}
	if got := Bedrooms("4 habitaciones"); got == nil || *got != 4 {
		t.Errorf("Bedrooms(habitaciones) = %v; want 4", got)
	}
	if got := Bedrooms("monoambiente"); got != nil {
		t.Errorf("Bedrooms(monoambiente) = %v; want nil", *got)
	}
	if got := Bathrooms("1 baño completo"); got == nil || *got != 1 {
		t.Errorf("Bathrooms(baño) = %v; want 1", got)
	}
}

func TestInferPropertyType(t *testing.T) {
	tests := []struct {
		title string
		url   string
		want  models.PropertyType
	}{
		{"Casa en Carrasco", "", models.TypeCasa},
		{"Hermoso apartamento", "", models.TypeApartamento},
		{"Venta PH 2 plantas", "", models.TypePH},
		{"Terreno en Canelones", "", models.TypeTerreno},
		{"Local en Centro", "", models.TypeLocal},
		{"Oficina en WTC", "", models.TypeOficina},
		{"Inmueble", "https://www.infocasas.com.uy/venta/casa-pocitos", models.TypeCasa},
		{"Dos dormitorios", "", models.TypeApartamento},
		// The hostname must not leak into the scan: infocasas.com.uy
		// contains "casa" but says nothing about the listing.
		{"Apartamento en Cordón", "https://www.infocasas.com.uy/inmueble/187654321/apartamento-cordon", models.TypeApartamento},
		{"Dos ambientes a estrenar", "https://www.infocasas.com.uy/inmueble/1/dos-ambientes", models.TypeApartamento},
		{"Esquina con buen metraje", "https://www.infocasas.com.uy/venta/terreno-salinas", models.TypeTerreno},
	}

	for _, tt := range tests {
		if got := InferPropertyType(tt.title, tt.url); got != tt.want {
			t.Errorf("InferPropertyType(%q, %q) = %s; want %s", tt.title, tt.url, got, tt.want)
		}
	}
}

func TestLastPathSegment(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.infocasas.com.uy/venta/apartamento-pocitos-123456", "apartamento-pocitos-123456"},
		{"https://www.infocasas.com.uy/inmueble/987654/", "987654"},
		{"https://example.com/", ""},
		{"relative/path/segment", "segment"},
	}

	for _, tt := range tests {
		if got := LastPathSegment(tt.url); got != tt.want {
			t.Errorf("LastPathSegment(%q) = %q; want %q", tt.url, got, tt.want)
		}
	}
}

func TestPathSegmentWithPrefix(t *testing.T) {
	url := "https://apartamento.mercadolibre.com.uy/MLU-612345678-apartamento-pocitos-_JM"
	if got := PathSegmentWithPrefix(url, "MLU"); got != "MLU-612345678-apartamento-pocitos-_JM" {
		t.Errorf("PathSegmentWithPrefix = %q", got)
	}
	if got := PathSegmentWithPrefix("https://example.com/foo/bar", "MLU"); got != "" {
		t.Errorf("PathSegmentWithPrefix(no match) = %q; want empty", got)
	}
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		base string
		href string
		want string
	}{
		{"https://www.infocasas.com.uy", "/inmueble/123", "https://www.infocasas.com.uy/inmueble/123"},
		{"https://www.infocasas.com.uy", "https://other.com/x", "https://other.com/x"},
		{"https://mercadolibre.com.uy", "", ""},
	}

	for _, tt := range tests {
		if got := AbsoluteURL(tt.base, tt.href); got != tt.want {
			t.Errorf("AbsoluteURL(%q, %q) = %q; want %q", tt.base, tt.href, got, tt.want)
		}
	}
}

func TestDetectAmenities(t *testing.T) {
	a := DetectAmenities("Apartamento con parrillero, piscina y ascensor")

	if a.Parrillero == nil || !*a.Parrillero {
		t.Error("expected parrillero detected")
	}
	if a.Pool == nil || !*a.Pool {
		t.Error("expected piscina detected")
	}
	if a.Elevator == nil || !*a.Elevator {
		t.Error("expected ascensor detected")
	}
	// Absence of a keyword stays unknown, never false
	if a.Gym != nil {
		t.Errorf("expected gym unknown, got %v", *a.Gym)
	}
	if a.Balcony != nil {
		t.Errorf("expected balcony unknown, got %v", *a.Balcony)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	if got := CollapseWhitespace("  Casa \n en   Pocitos \t"); got != "Casa en Pocitos" {
		t.Errorf("CollapseWhitespace = %q", got)
	}
}
