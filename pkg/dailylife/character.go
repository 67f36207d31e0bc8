package dailylife

// Character is the slice of a bot's personality configuration the
// daily-life loop needs: what it's curious about, and what it's working
// toward, used to score messages for relevance (§4.5's "perceive" stage).
type Character struct {
	BotName   string
	Drives    []string
	Goals     []string
	Interests []string
}

// interestText joins everything perceive should embed as one anchor
// string for cosine scoring against candidate messages.
func (c Character) interestText() string {
	parts := append(append(append([]string{}, c.Drives...), c.Goals...), c.Interests...)
	text := ""
	for i, p := range parts {
		if i > 0 {
			text += "; "
		}
		text += p
	}
	return text
}
