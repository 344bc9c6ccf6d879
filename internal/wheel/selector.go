package wheel

import "math"

const fullTurn = 360.0

// Geometry describes where the fixed pointer sits relative to the start
// edge of section 0, measured in degrees against the wheel's direction of
// travel. The pointer graphic sits at the top of the circle, 90 degrees
// from the reference axis.
type Geometry struct {
	PointerDegrees float64
}

var DefaultGeometry = Geometry{PointerDegrees: 90}

// SectionAngle is the arc of one of n equal sections.
func SectionAngle(n int) float64 {
	return fullTurn / float64(n)
}

// SelectSection returns the index of the section under the pointer after the
// wheel has come to rest at rotation degrees. rotation may be any real
// value, including accumulated multi-turn or negative rotations.
// sectionCount must be at least 1.
func SelectSection(rotation float64, sectionCount int) int {
	return DefaultGeometry.SelectSection(rotation, sectionCount)
}

func (g Geometry) SelectSection(rotation float64, sectionCount int) int {
	if sectionCount < 1 {
		panic("wheel: SelectSection needs at least one section")
	}

	r := normalize(rotation)
	// the wheel turns clockwise while sections are laid out counter-clockwise
	r = math.Mod(fullTurn-r, fullTurn)

	sectionAngle := SectionAngle(sectionCount)
	r = math.Mod(r+g.offset(sectionAngle, sectionCount), fullTurn)

	index := int(math.Floor(r / sectionAngle))
	if index < 0 {
		index = 0
	}
	if index >= sectionCount {
		index = sectionCount - 1
	}
	return index
}

// offset centres the pointer in a section and shifts by the pointer's
// distance from section 0. For the default 90 degree pointer the second
// term is sectionAngle*(n/4).
func (g Geometry) offset(sectionAngle float64, sectionCount int) float64 {
	pointerSections := g.PointerDegrees * float64(sectionCount) / fullTurn
	return sectionAngle/2 + sectionAngle*pointerSections
}

func normalize(rotation float64) float64 {
	return math.Mod(math.Mod(rotation, fullTurn)+fullTurn, fullTurn)
}
