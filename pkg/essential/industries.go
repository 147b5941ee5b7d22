package essential

import "github.com/clearfreight/tariffcore/pkg/config"

// Industry is a product-sector profile: keywords that detect it, the
// customary determination method named in rulings for that sector, and the
// weight vector applied to the six sub-scores.
type Industry struct {
	Name     string
	Keywords []string
	Method   string
	Weights  config.WeightVector
}

// builtinIndustries is the fixed sector table. Weight vectors sum to 1.
func builtinIndustries() []Industry {
	return []Industry{
		{
			Name:     "textiles",
			Keywords: []string{"fabric", "textile", "garment", "woven", "knit", "apparel", "clothing", "yarn", "fiber"},
			Method:   "chief weight of textile material",
			Weights: config.WeightVector{
				Weight: 0.35, Value: 0.15, Volume: 0.10,
				Function: 0.15, Marketability: 0.10, VisualImpact: 0.15,
			},
		},
		{
			Name:     "electronics",
			Keywords: []string{"electronic", "circuit", "device", "computer", "phone", "appliance", "battery", "semiconductor"},
			Method:   "principal function of the electronic component",
			Weights: config.WeightVector{
				Weight: 0.05, Value: 0.25, Volume: 0.05,
				Function: 0.45, Marketability: 0.15, VisualImpact: 0.05,
			},
		},
		{
			Name:     "furniture",
			Keywords: []string{"furniture", "chair", "table", "desk", "cabinet", "sofa", "shelf", "bed"},
			Method:   "structural material dominance",
			Weights: config.WeightVector{
				Weight: 0.25, Value: 0.20, Volume: 0.20,
				Function: 0.15, Marketability: 0.05, VisualImpact: 0.15,
			},
		},
		{
			Name:     "jewelry",
			Keywords: []string{"jewelry", "jewellery", "necklace", "ring", "bracelet", "earring", "gemstone", "pendant"},
			Method:   "precious material value dominance",
			Weights: config.WeightVector{
				Weight: 0.05, Value: 0.45, Volume: 0.05,
				Function: 0.05, Marketability: 0.20, VisualImpact: 0.20,
			},
		},
		{
			Name:     "machinery",
			Keywords: []string{"machine", "machinery", "engine", "motor", "pump", "turbine", "compressor", "mechanical"},
			Method:   "functional dominance of working components",
			Weights: config.WeightVector{
				Weight: 0.20, Value: 0.15, Volume: 0.10,
				Function: 0.40, Marketability: 0.10, VisualImpact: 0.05,
			},
		},
		{
			Name:     "footwear",
			Keywords: []string{"shoe", "boot", "footwear", "sandal", "sneaker", "sole", "upper"},
			Method:   "constituent material of the outer sole and upper",
			Weights: config.WeightVector{
				Weight: 0.20, Value: 0.20, Volume: 0.10,
				Function: 0.25, Marketability: 0.10, VisualImpact: 0.15,
			},
		},
		{
			Name:     "toys",
			Keywords: []string{"toy", "doll", "game", "puzzle", "playset", "plush"},
			Method:   "play value and amusement character",
			Weights: config.WeightVector{
				Weight: 0.10, Value: 0.15, Volume: 0.10,
				Function: 0.30, Marketability: 0.15, VisualImpact: 0.20,
			},
		},
	}
}
