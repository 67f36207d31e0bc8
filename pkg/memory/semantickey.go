package memory

import "strings"

// GeneralSemanticKey is the fallback tag when no topical cluster matches.
const GeneralSemanticKey = "general"

// semanticClusters is the closed topical vocabulary semantic keys are
// drawn from. This resolves the open question of "what is the closed
// vocabulary": a fixed table of cluster -> trigger keywords, never the
// first-three-words pattern the component design explicitly forbids.
var semanticClusters = []struct {
	key      string
	keywords []string
}{
	{"marine_biology", []string{"ocean", "fish", "coral", "whale", "marine", "reef"}},
	{"academic_anxiety", []string{"exam", "midterm", "finals", "grade", "professor", "homework", "thesis"}},
	{"pet_identity", []string{"my dog", "my cat", "my pet", "puppy", "kitten"}},
	{"preference_food", []string{"favorite food", "i love eating", "cuisine", "recipe", "restaurant"}},
	{"career_work", []string{"my job", "my boss", "coworker", "promotion", "interview", "resignation"}},
	{"relationship_family", []string{"my mom", "my dad", "my sister", "my brother", "my partner", "my spouse"}},
	{"health_wellbeing", []string{"therapy", "doctor", "diagnosed", "medication", "mental health"}},
	{"gaming_hobby", []string{"videogame", "video game", "game night", "speedrun", "gaming"}},
	{"travel_plans", []string{"vacation", "trip to", "flight", "itinerary", "travel"}},
}

// DeriveSemanticKey extracts a short topical tag from text using the
// closed cluster vocabulary above, falling back to GeneralSemanticKey.
func DeriveSemanticKey(text string) string {
	lower := strings.ToLower(text)
	for _, cluster := range semanticClusters {
		for _, kw := range cluster.keywords {
			if strings.Contains(lower, kw) {
				return cluster.key
			}
		}
	}
	return GeneralSemanticKey
}

// IsKnownSemanticKey reports whether key is in the closed vocabulary
// (excluding the general fallback), used by the retrieval router to
// decide whether a query should route to the semantic vector.
func IsKnownSemanticKey(key string) bool {
	for _, cluster := range semanticClusters {
		if cluster.key == key {
			return true
		}
	}
	return false
}
