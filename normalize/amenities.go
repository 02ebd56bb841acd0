package normalize

import "strings"

// Amenities holds the feature flags detectable from listing text. A nil
// pointer means the text said nothing either way; true means the keyword
// was present. Absence of a keyword is never evidence of absence, so false
// is never produced here.
type Amenities struct {
	Balcony    *bool
	Parrillero *bool
	Portero    *bool
	Elevator   *bool
	Pool       *bool
	Gym        *bool
}

var amenityKeywords = []struct {
	keys []string
	set  func(*Amenities, *bool)
}{
	{[]string{"balcón", "balcon"}, func(a *Amenities, v *bool) { a.Balcony = v }},
	{[]string{"parrillero", "parrilla"}, func(a *Amenities, v *bool) { a.Parrillero = v }},
	{[]string{"portero", "portería", "porteria"}, func(a *Amenities, v *bool) { a.Portero = v }},
	{[]string{"ascensor"}, func(a *Amenities, v *bool) { a.Elevator = v }},
	{[]string{"piscina"}, func(a *Amenities, v *bool) { a.Pool = v }},
	{[]string{"gimnasio", "gym"}, func(a *Amenities, v *bool) { a.Gym = v }},
}

// DetectAmenities scans a listing text block for amenity keywords.
func DetectAmenities(text string) Amenities {
	lower := strings.ToLower(text)

	var a Amenities
	for _, kw := range amenityKeywords {
		for _, k := range kw.keys {
			if strings.Contains(lower, k) {
				yes := true
				kw.set(&a, &yes)
				break
			}
		}
	}
	return a
}
