package contacts

// defaultLabelColors maps the known labels to Google Calendar color ids.
var defaultLabelColors = map[string]string{
	"טכנית":  "6",  // tangerine
	"מבצעים": "11", // tomato
	"גנק":    "3",  // grape
	"פיקוד":  "8",  // graphite
	"סונר":   "9",  // blueberry
	"נשק":    "10", // basil
	"מפקד":   "7",  // peacock
	"סגן":    "2",  // sage
	"צוות":   "1",  // lavender
}

// colorEmojis maps calendar color ids to the emoji appended to schedule
// summary bullets.
var colorEmojis = map[string]string{
	"1":  "🟣",
	"2":  "⚓️",
	"3":  "⚔️",
	"4":  "🧑‍💻",
	"5":  "👂",
	"6":  "⚙️",
	"7":  "🔱",
	"8":  "🛠️",
	"9":  "📡",
	"10": "🟢",
	"11": "👑",
}

// EmojiForColor returns the emoji for a calendar color id, or the empty
// string for an unknown id.
func EmojiForColor(colorID string) string {
	return colorEmojis[colorID]
}
