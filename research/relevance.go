// Package research fetches the supporting material WildWise attaches to
// answers from raw LLM backends: papers from Semantic Scholar and a related
// photo from Pixabay.
package research

import "strings"

// keywords gates enrichment: only queries touching any of these topics get
// papers and an image.
var keywords = []string{
	"wildlife", "biodiversity", "conservation", "bird", "climate", "change", "endangered", "animals",
	"trees", "rain", "flora", "fauna", "ecosystem", "habitat", "nature", "forest", "jungle",
	"savanna", "marine", "ocean", "reptile", "mammal", "amphibian", "earth", "india", "globe",
	"species", "extinct", "environment", "protection", "sustainability", "ecology", "pollution",
	"deforestation", "global", "warming", "temperature", "development", "laws",
	"research", "studies", "analysis", "trends", "challenges", "prospects", "solutions", "ngo",
	"government", "policy", "institutions", "carbon", "footprint", "impact", "human",
	"population", "hunting", "poaching", "fishing", "agriculture", "urbanization", "waste",
	"plastic", "recycling", "renewable", "energy", "services", "air", "soil", "preservation", "restoration",
	"migration",
}

// IsRelevant reports whether the lower-cased query contains any keyword, or
// the singular form of a keyword ending in "s". Matching is by substring.
func IsRelevant(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range keywords {
		if strings.Contains(q, kw) {
			return true
		}
		if singular, ok := strings.CutSuffix(kw, "s"); ok && singular != "" && strings.Contains(q, singular) {
			return true
		}
	}
	return false
}
