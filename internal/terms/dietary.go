// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package terms

// DietaryRule is one preference's violation and caution term lists.
// Explanation is a fmt template taking the matched ingredient.
type DietaryRule struct {
	Key         string   `json:"key" yaml:"key"`
	Label       string   `json:"label" yaml:"label"`
	Violations  []string `json:"violations" yaml:"violations"`
	Cautions    []string `json:"cautions" yaml:"cautions"`
	Explanation string   `json:"explanation" yaml:"explanation"`
}

var (
	meatTerms = []string{
		"beef", "pork", "chicken", "turkey", "lamb", "mutton", "veal", "bacon", "ham",
		"sausage", "pepperoni", "salami", "prosciutto", "lard", "tallow", "suet",
		"gelatin", "gelatine", "meat", "meat extract", "chicken broth", "beef broth",
		"bone broth", "collagen",
	}
	seafoodTerms = []string{
		"fish", "anchovy", "anchovies", "tuna", "salmon", "cod", "shrimp", "crab",
		"lobster", "clam", "oyster", "mussel", "scallop", "fish sauce", "fish oil",
		"isinglass",
	}
	dairyTerms = []string{
		"milk", "butter", "cream", "cheese", "whey", "casein", "caseinate", "lactose",
		"ghee", "yogurt", "buttermilk", "milk powder", "milk solids", "ice cream",
		"lactalbumin",
	}
	eggTerms = []string{
		"egg", "eggs", "egg white", "egg yolk", "albumin", "mayonnaise", "meringue",
	}
	glutenTerms = []string{
		"wheat", "barley", "rye", "malt", "spelt", "semolina", "durum", "farina",
		"bulgur", "couscous", "seitan", "triticale", "wheat flour", "enriched flour",
		"brewer's yeast",
	}
)

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

func builtinRules() map[string]DietaryRule {
	rules := []DietaryRule{
		{
			Key:   "vegan",
			Label: "vegan",
			Violations: concat(meatTerms, seafoodTerms, dairyTerms, eggTerms, []string{
				"honey", "beeswax", "carmine", "cochineal", "shellac", "lanolin", "rennet",
			}),
			Cautions: []string{
				"natural flavors", "natural flavor", "mono and diglycerides",
				"monoglycerides", "vitamin d3", "lecithin", "sugar", "l-cysteine",
				"glycerin", "stearic acid", "lactic acid", "enzymes",
			},
			Explanation: "%s is an animal-derived ingredient, not suitable for a vegan diet",
		},
		{
			Key:        "vegetarian",
			Label:      "vegetarian",
			Violations: concat(meatTerms, seafoodTerms, []string{"rennet", "carmine", "cochineal"}),
			Cautions: []string{
				"natural flavors", "natural flavor", "enzymes", "l-cysteine", "animal fat",
			},
			Explanation: "%s comes from meat or fish, not suitable for a vegetarian diet",
		},
		{
			Key:         "pescatarian",
			Label:       "pescatarian",
			Violations:  meatTerms,
			Cautions:    []string{"natural flavors", "animal fat", "enzymes"},
			Explanation: "%s comes from meat, not suitable for a pescatarian diet",
		},
		{
			Key:         "dairy_free",
			Label:       "dairy-free",
			Violations:  dairyTerms,
			Cautions:    []string{"natural flavors", "lactic acid", "caramel color", "margarine"},
			Explanation: "%s is a dairy ingredient",
		},
		{
			Key:         "gluten_free",
			Label:       "gluten-free",
			Violations:  glutenTerms,
			Cautions:    []string{"oats", "oat", "modified food starch", "natural flavors", "dextrin", "maltodextrin"},
			Explanation: "%s contains gluten",
		},
		{
			Key:   "halal",
			Label: "halal",
			Violations: []string{
				"pork", "bacon", "ham", "lard", "pepperoni", "prosciutto", "salami",
				"alcohol", "wine", "beer", "rum", "brandy", "ethanol",
			},
			Cautions: []string{
				"gelatin", "gelatine", "natural flavors", "vanilla extract", "mono and diglycerides",
				"rennet", "enzymes", "l-cysteine",
			},
			Explanation: "%s is not permissible in a halal diet",
		},
		{
			Key:   "kosher",
			Label: "kosher",
			Violations: []string{
				"pork", "bacon", "ham", "lard", "shrimp", "crab", "lobster", "clam", "oyster",
				"mussel", "scallop", "shellfish",
			},
			Cautions:    []string{"gelatin", "gelatine", "rennet", "natural flavors", "wine"},
			Explanation: "%s is not kosher",
		},
		{
			Key:   "keto",
			Label: "keto",
			Violations: []string{
				"sugar", "cane sugar", "corn syrup", "high fructose corn syrup", "glucose syrup",
				"dextrose", "maltodextrin", "wheat flour", "enriched flour", "rice", "potato starch",
				"corn starch",
			},
			Cautions: []string{
				"honey", "maple syrup", "fruit juice concentrate", "agave", "molasses", "oats",
			},
			Explanation: "%s is high in carbohydrates, not suitable for a keto diet",
		},
		{
			Key:   "low_sodium",
			Label: "low-sodium",
			Violations: []string{
				"salt", "sea salt", "sodium chloride", "monosodium glutamate", "msg",
			},
			Cautions: []string{
				"soy sauce", "baking soda", "sodium bicarbonate", "sodium benzoate",
				"disodium phosphate", "sodium nitrite",
			},
			Explanation: "%s is high in sodium",
		},
	}

	out := make(map[string]DietaryRule, len(rules))
	for _, r := range rules {
		out[r.Key] = r
	}
	return out
}

// plantBasedExceptions maps ambiguous dietary terms to plant-based phrases
// that must not be treated as the animal-derived product.
var plantBasedExceptions = map[string][]string{
	"butter": {
		"peanut butter", "almond butter", "cashew butter", "nut butter", "seed butter",
		"sunflower butter", "sunflower seed butter", "cocoa butter", "shea butter",
		"apple butter", "plant butter", "vegan butter", "butternut",
	},
	"milk": {
		"oat milk", "almond milk", "soy milk", "rice milk", "coconut milk", "cashew milk",
		"hemp milk", "pea milk", "plant milk", "milk thistle",
	},
	"cream": {
		"coconut cream", "cashew cream", "oat cream", "cream of tartar", "plant cream",
	},
	"lecithin": {
		"sunflower lecithin", "soy lecithin", "soya lecithin", "rapeseed lecithin",
		"canola lecithin",
	},
	"ice cream": {
		"non-dairy ice cream", "dairy-free ice cream", "oat ice cream", "coconut ice cream",
		"vegan ice cream",
	},
}

// dietaryExceptions maps short dietary terms to common words that contain
// them without being that ingredient.
var dietaryExceptions = map[string][]string{
	"ham":   {"graham", "champagne", "chamomile"},
	"egg":   {"eggplant"},
	"eggs":  {"eggplant"},
	"rice":  {"licorice", "liquorice"},
	"lard":  {"collard"},
	"rum":   {"crumb"},
	"oat":   {"goat"},
	"oats":  {"goats"},
	"honey": {"honeydew"},
	"salt":  {"unsalted"},
	"lamb":  {"lamb's lettuce"},
}
