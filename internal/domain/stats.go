package domain

import (
	"sort"

	"github.com/google/uuid"
)

// CountryCount is the number of distinct travellers in one country.
type CountryCount struct {
	Country string
	Users   int
}

// TravelersPerCountry counts each traveller (owner and members) once per
// country of the trips' addresses. A user on two trips in the same country
// counts once there; on trips in two countries, once in each.
// Callers filter trips to the date of interest beforehand.
// The result is sorted by country name.
func TravelersPerCountry(trips []Trip) []CountryCount {
	seen := make(map[string]map[uuid.UUID]struct{})
	for _, t := range trips {
		country := t.Address.Country
		users, ok := seen[country]
		if !ok {
			users = make(map[uuid.UUID]struct{})
			seen[country] = users
		}
		users[t.Owner.ID] = struct{}{}
		for _, m := range t.Members {
			users[m.ID] = struct{}{}
		}
	}

	out := make([]CountryCount, 0, len(seen))
	for country, users := range seen {
		out = append(out, CountryCount{Country: country, Users: len(users)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Country < out[j].Country })
	return out
}
