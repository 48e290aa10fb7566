package tracknumber

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"sync"
)

const (
	Prefix = "TRK"

	minValue = 100_000_000
	maxValue = 999_999_999
)

var pattern = regexp.MustCompile(`^TRK-\d{9}$`)

// Generator выдаёт номера вида TRK-123456789. Уникальность не гарантируется:
// коллизию ловит уникальный индекс хранилища.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func New() *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewWithSource нужен для детерминированных тестов.
func NewWithSource(src rand.Source) *Generator {
	return &Generator{rnd: rand.New(src)}
}

func (g *Generator) Generate() string {
	g.mu.Lock()
	n := minValue + g.rnd.IntN(maxValue-minValue+1)
	g.mu.Unlock()
	return fmt.Sprintf("%s-%d", Prefix, n)
}

func Valid(s string) bool {
	return pattern.MatchString(s)
}
