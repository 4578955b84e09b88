package advisor

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/LeonardoBeccarini/agri_advisor/internal/model/entities"
)

// Classifier stands in for an image model: it trusts a soil keyword in the
// file name and otherwise picks a soil class at random.
type Classifier struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewClassifier uses src for the random fallback; nil seeds from the clock.
func NewClassifier(src rand.Source) *Classifier {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Classifier{rnd: rand.New(src)}
}

// keywordOrder decides between hints naming several soils: "red_black.jpg" is red.
var keywordOrder = []entities.SoilType{
	entities.SoilRed,
	entities.SoilBlack,
	entities.SoilAlluvial,
	entities.SoilYellow,
	entities.SoilLaterite,
}

// Classify never fails. The whole hint is searched, case-insensitively.
func (c *Classifier) Classify(hint string) entities.SoilType {
	if hint != "" {
		h := strings.ToLower(hint)
		for _, s := range keywordOrder {
			if strings.Contains(h, s.Keyword()) {
				return s
			}
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return entities.SoilTypes[c.rnd.Intn(len(entities.SoilTypes))]
}
