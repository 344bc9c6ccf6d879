package wheel

import (
	"errors"
	"math"
	"math/rand"
	"sync"

	"github.com/chrisdamba/whattoeat/internal/models"
)

const (
	minTurns = 5
	maxTurns = 10
	// weighted landings stay this share of a section away from its edges
	landingMargin = 0.1
)

var ErrNoSections = errors.New("wheel: no sections to spin")

// Outcome is the result of a single spin. Index is always the section
// SelectSection reports for Rotation, whichever way the rotation was chosen.
type Outcome struct {
	Rotation float64
	Delta    float64
	Index    int
	Item     models.FoodItem
	Weighted bool
}

// Spinner draws spins. It is safe for concurrent use.
type Spinner struct {
	mu       sync.Mutex
	rng      *rand.Rand
	geometry Geometry
}

func NewSpinner(seed int64, geometry Geometry) *Spinner {
	return &Spinner{
		rng:      rand.New(rand.NewSource(seed)),
		geometry: geometry,
	}
}

func (s *Spinner) Geometry() Geometry {
	return s.geometry
}

// NextRotation adds between five and ten full turns plus a uniform extra
// angle to prev.
func (s *Spinner) NextRotation(prev float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	spins := minTurns + s.rng.Float64()*(maxTurns-minTurns)
	return prev + spins*fullTurn + s.rng.Float64()*fullTurn
}

// RotationForSection picks a cumulative rotation past prev that comes to rest
// inside section index of sectionCount, at least five whole turns later.
func (s *Spinner) RotationForSection(prev float64, index, sectionCount int) float64 {
	s.mu.Lock()
	turns := minTurns + s.rng.Intn(maxTurns-minTurns)
	jitter := (s.rng.Float64() - 0.5) * (1 - 2*landingMargin)
	s.mu.Unlock()

	return s.geometry.rotationFor(prev, index, sectionCount, turns, jitter)
}

// rotationFor inverts SelectSection: it lands at (index + 0.5 + jitter)
// section widths in pointer space, jitter in (-0.5, 0.5).
func (g Geometry) rotationFor(prev float64, index, sectionCount, turns int, jitter float64) float64 {
	sectionAngle := SectionAngle(sectionCount)
	target := (float64(index) + 0.5 + jitter) * sectionAngle
	reversed := normalize(target - g.offset(sectionAngle, sectionCount))
	rest := math.Mod(fullTurn-reversed, fullTurn)

	delta := normalize(rest - normalize(prev))
	return prev + float64(turns)*fullTurn + delta
}

// Spin turns the wheel once from prev. With weights that are not uniform the
// section is drawn from the weighted pool first and the rotation is derived
// to land on it; otherwise the rotation is drawn and the section read off it.
func (s *Spinner) Spin(prev float64, sections []models.WheelSection, weights models.CategoryWeights) (Outcome, error) {
	n := len(sections)
	if n == 0 {
		return Outcome{}, ErrNoSections
	}

	var rotation float64
	weighted := len(weights) > 0 && !weights.Uniform()
	if weighted {
		pool := BuildPool(sections, weights)
		s.mu.Lock()
		target := pool[s.rng.Intn(len(pool))]
		s.mu.Unlock()
		rotation = s.RotationForSection(prev, target, n)
	} else {
		rotation = s.NextRotation(prev)
	}

	index := s.geometry.SelectSection(rotation, n)
	return Outcome{
		Rotation: rotation,
		Delta:    rotation - prev,
		Index:    index,
		Item:     s.PickItem(sections[index]),
		Weighted: weighted,
	}, nil
}

// PickItem returns a uniformly chosen dish from section, or the zero item
// when the section is empty.
func (s *Spinner) PickItem(section models.WheelSection) models.FoodItem {
	if len(section.Items) == 0 {
		return models.FoodItem{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return section.Items[s.rng.Intn(len(section.Items))]
}
