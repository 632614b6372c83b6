// Package search maintains an in-memory full-text index over sent messages.
// Nothing here is durable: the index lives and dies with the process,
// exactly like the room message logs it mirrors.
package search

import (
	"strconv"
	"strings"

	"chat-hub/domain"
)

const defaultLimit = 10

// Query is the structured form of a chat search command.
// It decouples the raw user input from the index engine requirements.
type Query struct {
	RawInput string        // the original input from the user
	Terms    string        // the text to match against message content
	RoomID   domain.RoomID // optional room filter
	Limit    int           // maximum number of results
}

// ParseQuery extracts command-line style arguments from a raw string.
// Example: /find invoice late --room 7f3a --limit 5
func ParseQuery(input string) Query {
	query := Query{RawInput: input, Limit: defaultLimit}

	parts := strings.Fields(input)
	var terms []string
	for i := 0; i < len(parts); i++ {
		part := parts[i]

		if strings.HasPrefix(part, "--") && i+1 < len(parts) {
			value := parts[i+1]
			switch strings.TrimPrefix(part, "--") {
			case "room":
				query.RoomID = domain.RoomID(value)
			case "limit":
				if limit, err := strconv.Atoi(value); err == nil && limit > 0 {
					query.Limit = limit
				}
			}
			i++ // skip the value part in the next iteration
			continue
		}

		// Leading "/find" style verbs are not search terms
		if !strings.HasPrefix(part, "/") {
			terms = append(terms, part)
		}
	}

	query.Terms = strings.Join(terms, " ")
	return query
}
