package tutor

// Config holds generation settings for the gateway.
type Config struct {
	PassageSentences int // target sentence count for generated passages
	MaxTokens        int
	ChatMaxTokens    int
	Temperature      float64
	ChatTemperature  float64
}

// DefaultConfig returns sensible defaults for the gateway.
func DefaultConfig() Config {
	return Config{
		PassageSentences: 5,
		MaxTokens:        1024,
		ChatMaxTokens:    512,
		Temperature:      0.7,
		ChatTemperature:  0.6,
	}
}

// Theme length bounds for custom passage themes.
const (
	minThemeLen = 3
	maxThemeLen = 120
)
