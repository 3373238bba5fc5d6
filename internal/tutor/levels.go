package tutor

// LevelProfile describes what a CEFR level permits in a generated passage.
// The profile is embedded verbatim in the generation prompt.
type LevelProfile struct {
	Code           string
	Vocabulary     string
	Grammar        string
	SentenceLength string
}

var levelProfiles = []LevelProfile{
	{
		Code:           "A1",
		Vocabulary:     "the 500 most common words; concrete everyday objects and actions",
		Grammar:        "present tense only; simple declarative sentences; no subordinate clauses",
		SentenceLength: "4-8 words",
	},
	{
		Code:           "A2",
		Vocabulary:     "the 1000 most common words; daily routines, shopping, travel basics",
		Grammar:        "present and simple past; basic connectors (and, but, because)",
		SentenceLength: "5-10 words",
	},
	{
		Code:           "B1",
		Vocabulary:     "common vocabulary plus familiar abstract topics (work, opinions, plans)",
		Grammar:        "all basic tenses; relative clauses; common idioms sparingly",
		SentenceLength: "8-14 words",
	},
	{
		Code:           "B2",
		Vocabulary:     "broad vocabulary including less common words; some idiomatic usage",
		Grammar:        "conditional and subjunctive moods; passive voice; complex clauses",
		SentenceLength: "10-18 words",
	},
	{
		Code:           "C1",
		Vocabulary:     "near-native range including nuanced and low-frequency vocabulary",
		Grammar:        "full grammatical range; idioms, colloquialisms, and register shifts",
		SentenceLength: "12-22 words",
	},
}

// Levels returns the supported CEFR codes in ascending difficulty.
func Levels() []string {
	codes := make([]string, len(levelProfiles))
	for i, p := range levelProfiles {
		codes[i] = p.Code
	}
	return codes
}

// profileFor returns the profile for a CEFR code, defaulting to B1
// when the code is unrecognized.
func profileFor(code string) LevelProfile {
	for _, p := range levelProfiles {
		if p.Code == code {
			return p
		}
	}
	return levelProfiles[2]
}
