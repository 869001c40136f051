package lyrics

// MergedLine is the per-line output record combining timing and
// translation.
type MergedLine struct {
	Text                string  `json:"text"`
	Minutes             string  `json:"minutes"`
	Seconds             string  `json:"seconds"`
	Milliseconds        string  `json:"milliseconds"`
	Romaji              string  `json:"romaji"`
	Translation         string  `json:"translation"`
	ImprovedTranslation string  `json:"improved_translation"`
	Start               float64 `json:"start"`
	End                 float64 `json:"end"`
}

// DisplayTranslation prefers the reviewed translation.
func (m MergedLine) DisplayTranslation() string {
	if m.ImprovedTranslation != "" {
		return m.ImprovedTranslation
	}
	return m.Translation
}

// Metadata describes the audio the lyrics belong to.
type Metadata struct {
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Album    string  `json:"album"`
	Duration float64 `json:"duration"`
}
