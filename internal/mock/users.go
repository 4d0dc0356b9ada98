// Package mock generates deterministic user records for the demo and tests.
package mock

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/oakwood-commons/tablekit/pkg/columns"
	"github.com/oakwood-commons/tablekit/pkg/record"
)

// Namespace seeds the name-based UUIDs of generated users.
var Namespace = uuid.MustParse("6f1c2a52-3c1e-4d8e-9a57-2b4f3f0d1c9e")

var (
	firstNames = []string{
		"Leanne", "Ervin", "Clementine", "Patricia", "Chelsey", "Dennis",
		"Kurtis", "Nicholas", "Glenna", "Clementina", "Ada", "Grace",
	}
	lastNames = []string{
		"Graham", "Howell", "Bauch", "Lebsack", "Dietrich", "Schulist",
		"Weissnat", "Runolfsdottir", "Reichert", "DuBuque", "Lovelace", "Hopper",
	}
	cities = []string{
		"Gwenborough", "Wisokyburgh", "McKenziehaven", "South Elvis",
		"Roscoeview", "South Christy", "Howemouth", "Aliyaview",
	}
	streets = []string{
		"Kulas Light", "Victor Plains", "Douglas Extension", "Hoeger Mall",
		"Skiles Walks", "Norberto Crossing", "Rex Trail", "Ellsworth Summit",
	}
	domains = []string{"april.biz", "melissa.tv", "yesenia.net", "kory.org", "annie.ca", "jasper.info"}
	roles   = []string{"admin", "editor", "viewer", "owner"}
)

// Users returns n users generated from seed. The same seed always yields the
// same list; ids run from 1 to n.
func Users(n int, seed int64) []record.Record {
	if n <= 0 {
		return []record.Record{}
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
	out := make([]record.Record, n)
	for i := range out {
		id := i + 1
		first := firstNames[rng.IntN(len(firstNames))]
		last := lastNames[rng.IntN(len(lastNames))]
		username := strings.ToLower(first[:1] + last)
		domain := domains[rng.IntN(len(domains))]
		out[i] = record.Record{
			"id":       id,
			"uid":      UID(seed, id),
			"name":     first + " " + last,
			"username": username,
			"email":    fmt.Sprintf("%s.%d@%s", username, id, domain),
			"role":     roles[rng.IntN(len(roles))],
			"age":      18 + rng.IntN(50),
			"active":   rng.IntN(4) != 0,
			"phone":    fmt.Sprintf("1-%03d-%03d-%04d", 200+rng.IntN(800), rng.IntN(1000), rng.IntN(10000)),
			"website":  strings.ToLower(last) + "." + domain[strings.LastIndex(domain, ".")+1:],
			"address": map[string]any{
				"street": streets[rng.IntN(len(streets))],
				"city":   cities[rng.IntN(len(cities))],
				"geo": map[string]any{
					"lat": float64(rng.IntN(18000)-9000) / 100,
					"lng": float64(rng.IntN(36000)-18000) / 100,
				},
			},
		}
	}
	return out
}

// UID is the stable identifier of user id in the data set for seed.
func UID(seed int64, id int) string {
	return uuid.NewSHA1(Namespace, fmt.Appendf(nil, "%d/%d", seed, id)).String()
}

// Renderers are computed columns available to the demo by field name.
var Renderers = map[string]columns.RenderFunc{
	"address": func(r record.Record) string {
		addr, ok := r["address"].(map[string]any)
		if !ok {
			return ""
		}
		return fmt.Sprintf("%s, %s", addr["city"], addr["street"])
	},
	"contact": func(r record.Record) string {
		return r.Field("email") + " / " + r.Field("phone")
	},
}

// BindRenderers returns a copy of cols where columns naming a computed field
// render through Renderers.
func BindRenderers(cols []columns.Column) []columns.Column {
	out := make([]columns.Column, len(cols))
	for i, c := range cols {
		if fn, ok := Renderers[c.Field]; ok && c.Render == nil {
			c.Render = fn
		}
		out[i] = c
	}
	return out
}
