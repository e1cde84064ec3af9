package repl

import (
	"sort"
	"strings"
)

// Completer provides command completion and usage lines for the REPL.
type Completer struct {
	usage map[string]string
}

// NewCompleter creates a new Completer.
func NewCompleter() *Completer {
	return &Completer{
		usage: map[string]string{
			"GET":    "GET key",
			"SET":    "SET key value [EX seconds|PX milliseconds] [NX|XX]",
			"APPEND": "APPEND key value",
			"INCR":   "INCR key",
			"STRLEN": "STRLEN key",
			"TTL":    "TTL key",
			"PTTL":   "PTTL key",
			"DEL":    "DEL key [key ...]",
			"EXISTS": "EXISTS key [key ...]",
			"PING":   "PING [message]",
			"AUTH":   "AUTH [username] password",
			"QUIT":   "QUIT",
			"HELP":   "HELP [command]",
			"EXIT":   "EXIT",
		},
	}
}

// Commands returns all command names in sorted order.
func (c *Completer) Commands() []string {
	names := make([]string, 0, len(c.usage))
	for name := range c.usage {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Complete returns command names starting with prefix, ignoring case.
func (c *Completer) Complete(prefix string) []string {
	prefix = strings.ToUpper(prefix)
	var suggestions []string
	for _, name := range c.Commands() {
		if strings.HasPrefix(name, prefix) {
			suggestions = append(suggestions, name)
		}
	}
	return suggestions
}

// Usage returns the usage line of a command.
func (c *Completer) Usage(name string) (string, bool) {
	u, ok := c.usage[strings.ToUpper(name)]
	return u, ok
}
