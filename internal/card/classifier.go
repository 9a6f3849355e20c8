package card

import "strings"

// Kind is the top-level card category.
type Kind int

const (
	KindPokemon Kind = iota
	KindTrainer
	KindEnergy
)

// String returns the lowercase category label used in report JSON.
func (k Kind) String() string {
	switch k {
	case KindPokemon:
		return "pokemon"
	case KindTrainer:
		return "trainer"
	case KindEnergy:
		return "energy"
	default:
		return "trainer"
	}
}

// Trainer subtypes.
const (
	TrainerItem      = "item"
	TrainerSupporter = "supporter"
	TrainerStadium   = "stadium"
	TrainerTool      = "tool"
)

// Energy subtypes.
const (
	EnergyBasic   = "basic"
	EnergySpecial = "special"
)

// Category is the classified identity of a card: its kind plus an
// optional subtype (trainer subtype or energy subtype).
type Category struct {
	Kind    Kind
	Subtype string
}

// CardInput is the subset of a card entry the classifier looks at.
type CardInput struct {
	Name        string
	Category    string
	TrainerType string
	EnergyType  string
}

var basicEnergyNames = map[string]struct{}{
	"grass energy": {}, "fire energy": {}, "water energy": {},
	"lightning energy": {}, "psychic energy": {}, "fighting energy": {},
	"darkness energy": {}, "metal energy": {}, "fairy energy": {},
	"basic grass energy": {}, "basic fire energy": {}, "basic water energy": {},
	"basic lightning energy": {}, "basic psychic energy": {}, "basic fighting energy": {},
	"basic darkness energy": {}, "basic metal energy": {},
}

var stadiumKeywords = []string{
	"stadium", "arena", "temple", "tower", "lab", "academy", "court",
	"beach", "gym", "plaza", "park",
}

var toolKeywords = []string{
	"belt", "band", "cape", "helmet", "capsule", "charm", "vessel",
	"tool", "mask", "glasses", "board", "stone",
}

// Classify derives the Category of a card. Explicit fields win over
// name heuristics; the documented fallback for an unrecognized card is
// Trainer/item so that call sites can switch exhaustively without a
// catch-all branch of their own.
func Classify(in CardInput) Category {
	switch strings.ToLower(strings.TrimSpace(in.Category)) {
	case "pokemon", "pokémon":
		return Category{Kind: KindPokemon}
	case "trainer":
		return Category{Kind: KindTrainer, Subtype: trainerSubtype(in)}
	case "energy":
		return Category{Kind: KindEnergy, Subtype: energySubtype(in)}
	}

	name := strings.ToLower(strings.TrimSpace(in.Name))
	if strings.HasSuffix(name, " energy") {
		return Category{Kind: KindEnergy, Subtype: energySubtype(in)}
	}
	if in.TrainerType != "" {
		return Category{Kind: KindTrainer, Subtype: trainerSubtype(in)}
	}
	if in.EnergyType != "" {
		return Category{Kind: KindEnergy, Subtype: energySubtype(in)}
	}
	return Category{Kind: KindTrainer, Subtype: trainerSubtype(in)}
}

func trainerSubtype(in CardInput) string {
	switch strings.ToLower(strings.TrimSpace(in.TrainerType)) {
	case TrainerItem, TrainerSupporter, TrainerStadium, TrainerTool:
		return strings.ToLower(strings.TrimSpace(in.TrainerType))
	}

	name := strings.ToLower(strings.TrimSpace(in.Name))
	for _, kw := range stadiumKeywords {
		if strings.Contains(name, kw) {
			return TrainerStadium
		}
	}
	for _, kw := range toolKeywords {
		if strings.HasSuffix(name, " "+kw) || strings.Contains(name, kw+" ") {
			return TrainerTool
		}
	}
	return TrainerItem
}

func energySubtype(in CardInput) string {
	if et := strings.ToLower(strings.TrimSpace(in.EnergyType)); et == EnergyBasic || et == EnergySpecial {
		return et
	}
	name := strings.ToLower(strings.TrimSpace(in.Name))
	if _, ok := basicEnergyNames[name]; ok {
		return EnergyBasic
	}
	return EnergySpecial
}
