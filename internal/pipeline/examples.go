package pipeline

// ExampleCategory groups sample questions shown to new users.
type ExampleCategory struct {
	Name      string   `json:"name"`
	Questions []string `json:"questions"`
}

// Examples returns the curated question catalog, grouped by topic.
func Examples() []ExampleCategory {
	return []ExampleCategory{
		{
			Name: "Players",
			Questions: []string{
				"How many players are registered at the academy?",
				"Show me all goalkeepers and their heights",
				"Which players are younger than 14?",
				"List left-footed defenders",
			},
		},
		{
			Name: "Teams and games",
			Questions: []string{
				"How many games did each team play this season?",
				"Which team scored the most goals?",
				"Show me the results of the last five games",
				"What is the win rate of the under-17 team?",
			},
		},
		{
			Name: "Performance",
			Questions: []string{
				"Who are the top five scorers?",
				"Which players have the most assists per game?",
				"Show me players with more than 500 minutes played",
				"Who received the most yellow cards?",
			},
		},
		{
			Name: "Evaluations and metrics",
			Questions: []string{
				"What are the average evaluation grades by category?",
				"Which players improved their sprint times this year?",
				"Show me the latest skill assessments for midfielders",
				"Who has the highest passing rating?",
			},
		},
	}
}
