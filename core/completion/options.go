package completion

type PromptOptions struct {
	// MaxOutputTokens caps the generated reply length. Zero means the client
	// default.
	MaxOutputTokens int
	// Temperature sets the sampling temperature. Nil means the client
	// default.
	Temperature *float64
}

type PromptOption func(*PromptOptions)

func WithMaxOutputTokens(maxOutputTokens int) PromptOption {
	return func(o *PromptOptions) {
		if maxOutputTokens <= 0 {
			return
		}

		o.MaxOutputTokens = maxOutputTokens
	}
}

func WithTemperature(temperature float64) PromptOption {
	return func(o *PromptOptions) {
		o.Temperature = &temperature
	}
}
