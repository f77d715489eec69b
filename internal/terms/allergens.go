// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package terms

// Canonical allergen names.
const (
	Milk      = "Milk"
	Eggs      = "Eggs"
	Peanuts   = "Peanuts"
	TreeNuts  = "Tree Nuts"
	Fish      = "Fish"
	Shellfish = "Shellfish"
	Wheat     = "Wheat"
	Gluten    = "Gluten"
	Soy       = "Soy"
	Sesame    = "Sesame"
	Mustard   = "Mustard"
	Sulfites  = "Sulfites"
)

// allergenSynonyms maps lowercase label terms to their canonical allergen.
var allergenSynonyms = map[string][]string{
	Milk: {
		"milk", "whole milk", "skim milk", "nonfat milk", "milk powder", "nonfat dry milk",
		"milk solids", "milkfat", "milk fat", "butter", "buttermilk", "butterfat", "butter oil",
		"cream", "sour cream", "half and half", "cheese", "whey", "whey protein",
		"casein", "caseinate", "sodium caseinate", "calcium caseinate", "lactose",
		"lactalbumin", "lactoglobulin", "ghee", "yogurt", "yoghurt", "curds", "ice cream",
		"custard", "kefir",
	},
	Eggs: {
		"egg", "eggs", "egg white", "egg whites", "egg yolk", "egg yolks", "whole egg",
		"dried egg", "egg powder", "albumin", "albumen", "ovalbumin", "ovomucoid",
		"lysozyme", "mayonnaise", "meringue",
	},
	Peanuts: {
		"peanut", "peanuts", "peanut butter", "peanut oil", "peanut flour",
		"groundnut", "groundnuts", "arachis oil", "monkey nuts",
	},
	TreeNuts: {
		"almond", "almonds", "cashew", "cashews", "walnut", "walnuts", "pecan", "pecans",
		"hazelnut", "hazelnuts", "filbert", "filberts", "pistachio", "pistachios",
		"macadamia", "brazil nut", "brazil nuts", "pine nut", "pine nuts", "praline",
		"marzipan", "nougat", "gianduja", "tree nuts",
	},
	Fish: {
		"fish", "anchovy", "anchovies", "cod", "salmon", "tuna", "tilapia", "pollock",
		"haddock", "trout", "sardine", "sardines", "halibut", "fish sauce", "fish oil",
		"fish gelatin", "surimi",
	},
	Shellfish: {
		"shellfish", "shrimp", "prawn", "prawns", "crab", "lobster", "crayfish",
		"crawfish", "langoustine", "clam", "clams", "mussel", "mussels", "oyster",
		"oysters", "scallop", "scallops", "krill",
	},
	Wheat: {
		"wheat", "wheat flour", "whole wheat", "whole wheat flour", "enriched flour",
		"enriched wheat flour", "flour", "bleached flour", "semolina", "durum", "spelt",
		"farina", "bulgur", "couscous", "seitan", "graham flour", "wheat starch",
		"wheat gluten", "einkorn", "emmer", "kamut",
	},
	Gluten: {
		"gluten", "barley", "barley malt", "rye", "malt", "malt extract", "malt vinegar",
		"malted barley", "triticale", "brewer's yeast",
	},
	Soy: {
		"soy", "soya", "soybean", "soybeans", "soy lecithin", "soya lecithin", "lecithin",
		"soy sauce", "soy protein", "soy flour", "soybean oil", "tofu", "edamame",
		"miso", "tempeh", "tamari",
	},
	Sesame: {
		"sesame", "sesame seed", "sesame seeds", "sesame oil", "tahini", "benne",
		"gingelly",
	},
	Mustard: {
		"mustard", "mustard seed", "mustard seeds", "mustard flour", "mustard oil",
	},
	Sulfites: {
		"sulfite", "sulfites", "sulphite", "sulphites", "sulfur dioxide",
		"sodium bisulfite", "sodium metabisulfite", "potassium metabisulfite",
		"sodium sulfite",
	},
}

// allergenFalsePositives lists, per canonical allergen, phrases that must
// never register as that allergen even though they contain a synonym.
var allergenFalsePositives = map[string][]string{
	Milk: {
		"peanut butter", "almond butter", "cashew butter", "nut butter", "seed butter",
		"sunflower butter", "sunflower seed butter", "cocoa butter", "shea butter",
		"apple butter", "coconut milk", "oat milk", "almond milk", "soy milk", "rice milk",
		"cashew milk", "hemp milk", "coconut cream", "cream of tartar", "milk thistle",
		"butternut", "milkweed",
	},
	Eggs: {
		"live cultures", "active cultures", "bacterial cultures", "vegetable cultures",
		"eggplant",
	},
	Soy: {
		"sunflower lecithin", "rapeseed lecithin", "canola lecithin", "egg lecithin",
	},
	Wheat: {
		"buckwheat", "rice flour", "corn flour", "almond flour", "coconut flour",
		"chickpea flour", "tapioca flour", "potato flour", "cassava flour", "oat flour",
		"sorghum flour", "millet flour",
	},
	Fish: {
		"shellfish",
	},
	TreeNuts: {
		"nutmeg", "water chestnut", "butternut squash",
	},
	Gluten: {
		"gluten free", "gluten-free",
	},
	Peanuts: {
		"peanut free",
	},
}

// allergenIncludes lists allergens whose sources are also sources of a
// broader allergen. Every wheat source carries gluten.
var allergenIncludes = map[string][]string{
	Gluten: {Wheat},
}

// allergenAliases resolves loose profile entries to canonical names.
var allergenAliases = map[string]string{
	"dairy":     Milk,
	"lactose":   Milk,
	"egg":       Eggs,
	"peanut":    Peanuts,
	"tree nut":  TreeNuts,
	"nuts":      TreeNuts,
	"shellfish": Shellfish,
	"crustacea": Shellfish,
	"seafood":   Shellfish,
	"soya":      Soy,
	"sulphites": Sulfites,
	"celiac":    Gluten,
	"coeliac":   Gluten,
}

// inferenceAllowlist are the allergens severe enough that a merely inferred
// risk escalates to an explicit finding.
var inferenceAllowlist = []string{
	"peanuts", "tree nuts", "shellfish", "fish", "milk", "eggs", "wheat", "soy", "sesame",
}
