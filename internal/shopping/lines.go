package shopping

import (
	"regexp"
	"strings"
)

// bulletPrefixes are list markers people paste along with ingredients.
var bulletPrefixes = []string{"- ", "* ", "• ", "•"}

var leadingNumber = regexp.MustCompile(`^(\d+(?:\.\d+)?|\.\d+)\s*(.*)$`)

// knownUnits decides whether the word after a leading number is a unit
// ("500 g flour") or already part of the name ("2 eggs").
var knownUnits = map[string]bool{
	"g": true, "gr": true, "gram": true, "grams": true,
	"kg": true, "kgs": true, "mg": true,
	"ml": true, "l": true, "litre": true, "litres": true, "liter": true, "liters": true,
	"tsp": true, "tbsp": true, "cup": true, "cups": true,
	"oz": true, "lb": true, "lbs": true,
	"pcs": true, "pc": true, "piece": true, "pieces": true,
	"clove": true, "cloves": true, "can": true, "cans": true,
	"slice": true, "slices": true, "bunch": true, "pinch": true,
	"pack": true, "packs": true, "bottle": true, "bottles": true,
}

// splitEntries turns recipe ingredient entries into trimmed, non-empty
// lines with list markers removed.
func splitEntries(entries []string) []string {
	var out []string
	for _, entry := range entries {
		entry = strings.ReplaceAll(entry, "\r\n", "\n")
		for _, line := range strings.Split(entry, "\n") {
			line = stripBullet(strings.TrimSpace(line))
			if line == "" {
				continue
			}
			out = append(out, line)
		}
	}
	return out
}

func stripBullet(line string) string {
	for _, prefix := range bulletPrefixes {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
	return line
}

// splitLine separates an ingredient line into its name and quantity text.
// Accepted forms: "Flour: 500 g", "500 g flour", "2 eggs" and "salt".
func splitLine(line string) (name, qty string) {
	if i := strings.Index(line, ":"); i >= 0 {
		name = strings.TrimSpace(line[:i])
		qty = strings.TrimSpace(line[i+1:])
		if name != "" {
			return name, qty
		}
		line = qty
	}

	m := leadingNumber.FindStringSubmatch(line)
	if m == nil {
		return line, ""
	}

	number, rest := m[1], strings.TrimSpace(m[2])
	if rest == "" {
		return line, ""
	}

	fields := strings.Fields(rest)
	if len(fields) >= 2 && knownUnits[strings.ToLower(fields[0])] {
		return strings.Join(fields[1:], " "), number + " " + fields[0]
	}

	return rest, number
}
