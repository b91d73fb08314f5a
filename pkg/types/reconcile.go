package types

// Pattern is a user-authored label with aliases used to classify extracted events
type Pattern struct {
	Label   string   `yaml:"label" json:"label"`
	Aliases []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}

// ScheduledItem is something the user already has on their schedule
type ScheduledItem struct {
	Title   string `yaml:"title" json:"title"`
	Date    string `yaml:"date,omitempty" json:"date,omitempty"`
	Time    string `yaml:"time,omitempty" json:"time,omitempty"`
	Pattern string `yaml:"pattern,omitempty" json:"pattern,omitempty"`
}

// ExtractionResult is the reconciliation output contract. Nil fields mean
// "not found".
type ExtractionResult struct {
	Pattern *string `json:"pattern"`
	Topic   string  `json:"topic"`
	Date    *string `json:"date"`
	Time    *string `json:"time"`
}
