// Package normalize turns raw text fragments scraped from listing markup
// into typed values. Every function is total: unparseable input yields the
// zero value (or nil), never an error.
package normalize

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"buscacasas/models"
)

// DefaultDepartment is assumed when a listing carries no usable location.
const DefaultDepartment = "Montevideo"

var (
	// numberRegexp captures the leading numeric run of a price fragment,
	// grouping separators included.
	numberRegexp = regexp.MustCompile(`[\d.,]+`)

	areaRegexp     = regexp.MustCompile(`(?i)(\d+)\s*m[²2]`)
	bedroomRegexp  = regexp.MustCompile(`(?i)(\d+)\s*(?:dormitorios?|dorm|hab(?:itaciones)?)`)
	bathroomRegexp = regexp.MustCompile(`(?i)(\d+)\s*baños?`)
	garageRegexp   = regexp.MustCompile(`(?i)(\d+)\s*(?:garaj|garag|cocher)`)
)

// ParsePrice extracts a numeric amount and a currency from a price fragment
// such as "U$S 120.500" or "$ 2.300.000". Comma and period both act as
// grouping separators (Uruguayan portals use them interchangeably). A bare
// "$" without an explicit USD marker means pesos.
func ParsePrice(text string) (float64, models.Currency) {
	currency := models.CurrencyUYU
	if strings.Contains(text, "U$S") || strings.Contains(text, "USD") {
		currency = models.CurrencyUSD
	}

	match := numberRegexp.FindString(text)
	if match == "" {
		return 0, currency
	}

	digits := strings.NewReplacer(".", "", ",", "").Replace(match)
	price, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, currency
	}
	return price, currency
}

// ParseLocation splits a free-text location ("Pocitos, Montevideo") into
// neighborhood and department. The last comma-separated segment is the
// department; when more than one segment is present the first one is the
// neighborhood.
func ParseLocation(text string) (department, neighborhood string) {
	parts := strings.Split(text, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	department = parts[len(parts)-1]
	if department == "" {
		department = DefaultDepartment
	}
	if len(parts) > 1 && parts[0] != "" {
		neighborhood = parts[0]
	}
	return department, neighborhood
}

// TotalArea finds the first "N m²" / "N m2" occurrence in a text block.
func TotalArea(text string) *float64 {
	if m := areaRegexp.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return &v
		}
	}
	return nil
}

// Bedrooms finds the first dormitorios/dorm/hab count in a text block.
func Bedrooms(text string) *int {
	return firstInt(bedroomRegexp, text)
}

// Bathrooms finds the first baños count in a text block.
func Bathrooms(text string) *int {
	return firstInt(bathroomRegexp, text)
}

// Garages finds the first garaje/cochera count in a text block.
func Garages(text string) *int {
	return firstInt(garageRegexp, text)
}

func firstInt(re *regexp.Regexp, text string) *int {
	if m := re.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			return &v
		}
	}
	return nil
}

// InferPropertyType guesses the category from keywords in the title and the
// URL path, defaulting to apartamento when nothing matches. Only the path
// takes part in the scan: hostnames like infocasas.com.uy would otherwise
// match "casa" for every listing on the site.
func InferPropertyType(title, listingURL string) models.PropertyType {
	text := strings.ToLower(title + " " + urlPath(listingURL))
	switch {
	case strings.Contains(text, "casa"):
		return models.TypeCasa
	case strings.Contains(text, "terreno"):
		return models.TypeTerreno
	case strings.Contains(text, "oficina"):
		return models.TypeOficina
	case strings.Contains(text, "local"):
		return models.TypeLocal
	case containsWord(text, "ph"):
		return models.TypePH
	}
	return models.TypeApartamento
}

// urlPath strips scheme and host from an absolute URL. Relative inputs are
// already paths and pass through as-is.
func urlPath(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.IsAbs() {
		return u.Path
	}
	return rawURL
}

func containsWord(text, word string) bool {
	for _, f := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		if f == word {
			return true
		}
	}
	return false
}

// LastPathSegment returns the last non-empty path segment of a URL, used as
// the source-native listing ID when the site has no explicit ID marker.
func LastPathSegment(rawURL string) string {
	u, err := url.Parse(rawURL)
	path := rawURL
	if err == nil && u.Path != "" {
		path = u.Path
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return ""
}

// PathSegmentWithPrefix returns the first path segment starting with the
// given prefix (e.g. "MLU" for MercadoLibre item codes), or "".
func PathSegmentWithPrefix(rawURL, prefix string) string {
	for _, part := range strings.Split(rawURL, "/") {
		if strings.HasPrefix(part, prefix) {
			return part
		}
	}
	return ""
}

// AbsoluteURL resolves href against base when the source emits a relative
// path. Already-absolute URLs pass through untouched.
func AbsoluteURL(base, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}

// CollapseWhitespace trims a string and squeezes internal whitespace runs
// into single spaces.
func CollapseWhitespace(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
