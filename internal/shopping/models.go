package shopping

// Item is one stored grocery line of a week. Position keeps document order
// across the whole week.
type Item struct {
	ID        int64  `json:"id"`
	WeekStart string `json:"week_start"`
	Category  string `json:"category"`
	Item      string `json:"item"`
	Days      string `json:"days"`
	Position  int    `json:"position"`
}
