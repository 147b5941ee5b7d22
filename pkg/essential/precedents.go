package essential

import (
	"sort"
	"strings"
)

// Precedent is a historical classification ruling used to corroborate an
// essential-character determination.
type Precedent struct {
	Reference string  `json:"reference"`
	Product   string  `json:"product"`
	Holding   string  `json:"holding"`
	Keywords  []string
	Relevance float64 `json:"relevance"`
}

// builtinPrecedents is a small fixed ruling table. Matching is naive token
// overlap against the product type; the analyzer takes the top three.
func builtinPrecedents() []Precedent {
	return []Precedent{
		{
			Reference: "HSC 21/1998 (laptop carrying case)",
			Product:   "fitted laptop carrying case with strap",
			Holding:   "Fitted containers presented with the article classify with the article under GRI 5(a).",
			Keywords:  []string{"case", "container", "laptop", "fitted", "bag"},
		},
		{
			Reference: "HSC 30/2002 (steel-bodied machine housing)",
			Product:   "steel machine housing with plastic trim",
			Holding:   "The steel body giving structural and functional character determines classification, not decorative trim.",
			Keywords:  []string{"steel", "machine", "housing", "plastic", "trim", "metal"},
		},
		{
			Reference: "WCO Opinion 9503.00/3 (toy sets)",
			Product:   "retail set of plastic toy figures with cardboard scenery",
			Holding:   "The component providing the play value gives a toy set its essential character.",
			Keywords:  []string{"toy", "set", "plastic", "play", "figures"},
		},
		{
			Reference: "HSC 26/2005 (cotton-polyester shirt)",
			Product:   "woven shirt of 55% cotton 45% polyester",
			Holding:   "Chief weight of the textile material controls at heading level for woven garments.",
			Keywords:  []string{"cotton", "polyester", "shirt", "woven", "garment", "fabric"},
		},
		{
			Reference: "HSC 38/2009 (smartphone composite)",
			Product:   "smartphone with touchscreen and metal frame",
			Holding:   "The apparatus' principal function, not its enclosure material, gives essential character.",
			Keywords:  []string{"phone", "smartphone", "electronic", "screen", "device"},
		},
		{
			Reference: "HSC 14/2011 (wooden table with glass top)",
			Product:   "dining table of wood with tempered glass surface",
			Holding:   "The wooden frame providing the supporting structure gives the furniture its essential character.",
			Keywords:  []string{"table", "wood", "glass", "furniture", "frame"},
		},
		{
			Reference: "HSC 7/2015 (silver-plated costume jewelry)",
			Product:   "base-metal necklace with silver plating",
			Holding:   "Surface plating of precious metal does not displace the base metal's character absent value dominance.",
			Keywords:  []string{"necklace", "silver", "jewelry", "plated", "metal"},
		},
		{
			Reference: "HSC 19/2018 (leather-upper sneaker)",
			Product:   "sneaker with leather upper and rubber sole",
			Holding:   "For footwear the constituent material of the upper controls subject to the sole's function.",
			Keywords:  []string{"sneaker", "shoe", "leather", "rubber", "sole", "footwear"},
		},
	}
}

// matchPrecedents scores the ruling table by token overlap with the product
// type and returns the top matches, highest relevance first.
func matchPrecedents(table []Precedent, productTokens []string, limit int) []Precedent {
	if len(productTokens) == 0 {
		return nil
	}
	tokenSet := make(map[string]bool, len(productTokens))
	for _, tok := range productTokens {
		tokenSet[tok] = true
	}

	var matched []Precedent
	for _, p := range table {
		hits := 0
		for _, kw := range p.Keywords {
			if tokenSet[strings.ToLower(kw)] {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		p.Relevance = float64(hits) / float64(len(p.Keywords))
		matched = append(matched, p)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Relevance > matched[j].Relevance
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}
