package domain

import "fmt"

// Emojis is the quick-insert palette offered next to the task input.
var Emojis = []string{
	"😀", "😁", "😂", "🤣", "😊", "😍", "😎", "🤔", "😢", "😭", "😡", "👍",
	"👏", "🙏", "🔥", "⭐", "💡", "✅", "❤️", "🌸", "☀️", "🌙", "⚡", "💬",
}

// AppendEmoji appends the palette entry at index i to text.
func AppendEmoji(text string, i int) (string, error) {
	if i < 0 || i >= len(Emojis) {
		return text, &ValidationError{Field: "emoji", Message: fmt.Sprintf("no emoji at index %d", i)}
	}
	return text + Emojis[i], nil
}
