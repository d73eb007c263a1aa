package understat

// League pairs the name used in the dataset with the code understat expects.
type League struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// Leagues are the six leagues understat publishes player statistics for.
var Leagues = []League{
	{Name: "EPL", Code: "EPL"},
	{Name: "La_Liga", Code: "La_liga"},
	{Name: "Bundesliga", Code: "Bundesliga"},
	{Name: "Serie_A", Code: "Serie_A"},
	{Name: "Ligue_1", Code: "Ligue_1"},
	{Name: "RFPL", Code: "RFPL"},
}
