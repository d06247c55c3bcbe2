package model

// Style is a learning style category. "mixed" is only ever produced by
// classification, never carried by survey questions or content.
type Style string

const (
	StyleVisual      Style = "visual"
	StyleAuditory    Style = "auditory"
	StyleKinesthetic Style = "kinesthetic"
	StyleMixed       Style = "mixed"
)

// Categories are the three scorable styles, in canonical order.
var Categories = []Style{StyleVisual, StyleAuditory, StyleKinesthetic}

func ParseStyle(s string) (Style, bool) {
	switch Style(s) {
	case StyleVisual, StyleAuditory, StyleKinesthetic, StyleMixed:
		return Style(s), true
	}
	return "", false
}

// CategoryScores holds one normalized 0-100 score per style category.
type CategoryScores struct {
	Visual      float64 `json:"visual"`
	Auditory    float64 `json:"auditory"`
	Kinesthetic float64 `json:"kinesthetic"`
}

func (s CategoryScores) Get(style Style) float64 {
	switch style {
	case StyleVisual:
		return s.Visual
	case StyleAuditory:
		return s.Auditory
	case StyleKinesthetic:
		return s.Kinesthetic
	}
	return 0
}

func (s *CategoryScores) Set(style Style, value float64) {
	switch style {
	case StyleVisual:
		s.Visual = value
	case StyleAuditory:
		s.Auditory = value
	case StyleKinesthetic:
		s.Kinesthetic = value
	}
}

func (s CategoryScores) Max() float64 {
	max := s.Visual
	if s.Auditory > max {
		max = s.Auditory
	}
	if s.Kinesthetic > max {
		max = s.Kinesthetic
	}
	return max
}

func (s CategoryScores) Min() float64 {
	min := s.Visual
	if s.Auditory < min {
		min = s.Auditory
	}
	if s.Kinesthetic < min {
		min = s.Kinesthetic
	}
	return min
}

// Spread is the distance between the strongest and weakest category.
func (s CategoryScores) Spread() float64 {
	return s.Max() - s.Min()
}

// DominantStyle classifies a score set. The result is StyleMixed whenever
// any second category comes within threshold points of the maximum.
func DominantStyle(scores CategoryScores, threshold float64) Style {
	max := scores.Max()

	dominant := StyleVisual
	within := 0
	for _, c := range Categories {
		v := scores.Get(c)
		if v == max {
			dominant = c
		}
		if max-v <= threshold {
			within++
		}
	}

	if within > 1 {
		return StyleMixed
	}
	return dominant
}
