package gallery

import "sort"

// LocationCatalog groups the place names observed in a photo list, feeding
// the location selector. Countries appear in sorted order, each with its
// sorted, de-duplicated cities.
type LocationCatalog struct {
	Countries []CountryEntry `json:"countries"`
}

type CountryEntry struct {
	Country string   `json:"country"`
	Cities  []string `json:"cities"`
}

// BuildLocationCatalog derives the catalog from enriched photos. Photos
// without a country are skipped; a city without a known country never occurs
// since enrichment sets both from one lookup.
func BuildLocationCatalog(photos []Photo) LocationCatalog {
	byCountry := make(map[string]map[string]struct{})
	for _, p := range photos {
		if p.Country == nil {
			continue
		}
		cities, ok := byCountry[*p.Country]
		if !ok {
			cities = make(map[string]struct{})
			byCountry[*p.Country] = cities
		}
		if p.City != nil {
			cities[*p.City] = struct{}{}
		}
	}

	catalog := LocationCatalog{Countries: make([]CountryEntry, 0, len(byCountry))}
	for country, citySet := range byCountry {
		cities := make([]string, 0, len(citySet))
		for city := range citySet {
			cities = append(cities, city)
		}
		sort.Strings(cities)
		catalog.Countries = append(catalog.Countries, CountryEntry{Country: country, Cities: cities})
	}
	sort.Slice(catalog.Countries, func(i, j int) bool {
		return catalog.Countries[i].Country < catalog.Countries[j].Country
	})
	return catalog
}
