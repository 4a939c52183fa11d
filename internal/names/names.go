// Package names generates memorable room names such as "sleepy-otter-waffle".
package names

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/BioHazard786/relayroom/internal/directory"
)

// Generate returns a random adjective-animal-dish or adjective-animal-thing
// name. Every generated name resolves as a short room name.
func Generate() string {
	for {
		last := dishes
		if randomIndex(2) == 1 {
			last = things
		}
		name := strings.Join([]string{pick(adjectives), pick(animals), pick(last)}, "-")
		if len(name) <= directory.MaxNameLength {
			return name
		}
	}
}

func pick(words []string) string {
	return words[randomIndex(len(words))]
}

// randomIndex returns a cryptographically secure random index in [0, max).
func randomIndex(max int) int {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic("names: failed to generate random index: " + err.Error())
	}
	return int(n.Int64())
}
