package market

// SuggestionCursor tracks the highlighted entry of a suggestion list.
// Down and Up wrap around; Commit returns the highlighted suggestion (or the
// typed input when nothing is highlighted) and clears the highlight.
type SuggestionCursor struct {
	options []string
	index   int
}

// NewSuggestionCursor creates a cursor with nothing highlighted.
func NewSuggestionCursor(options []string) *SuggestionCursor {
	return &SuggestionCursor{options: options, index: -1}
}

// Reset replaces the options and clears the highlight. Called on every keystroke.
func (c *SuggestionCursor) Reset(options []string) {
	c.options = options
	c.index = -1
}

// Down highlights the next suggestion.
func (c *SuggestionCursor) Down() (string, bool) {
	if len(c.options) == 0 {
		return "", false
	}
	c.index = (c.index + 1) % len(c.options)
	return c.options[c.index], true
}

// Up highlights the previous suggestion.
func (c *SuggestionCursor) Up() (string, bool) {
	n := len(c.options)
	if n == 0 {
		return "", false
	}
	if c.index < 0 {
		c.index = 0
	}
	c.index = (c.index - 1 + n) % n
	return c.options[c.index], true
}

// Selected returns the highlighted suggestion.
func (c *SuggestionCursor) Selected() (string, bool) {
	if c.index < 0 || c.index >= len(c.options) {
		return "", false
	}
	return c.options[c.index], true
}

// Commit resolves the search term for Tab/Enter.
func (c *SuggestionCursor) Commit(input string) string {
	if s, ok := c.Selected(); ok {
		input = s
	}
	c.index = -1
	return input
}
