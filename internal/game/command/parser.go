package command

import "strings"

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the leading run of letters of the input, lowercased.
	Command string
	// Args are the whitespace-separated words after the command.
	Args []string
	// RawArgs is the raw text after the command (preserving spacing for reasons).
	RawArgs string
}

// Parse splits a chat line into a command and arguments. An optional leading
// "." or "/" is dropped, and the command word ends at the first non-letter so
// that ".rb2 60" parses as command "rb" with args ["2", "60"].
//
// Postcondition: Returns a ParseResult. If line has no leading letters,
// Command is empty and the whole line is RawArgs.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "./")
	if line == "" {
		return ParseResult{}
	}

	end := 0
	for end < len(line) && isLetter(line[end]) {
		end++
	}

	cmd := strings.ToLower(line[:end])
	rest := strings.TrimSpace(line[end:])

	var args []string
	if rest != "" {
		args = strings.Fields(rest)
	}

	return ParseResult{
		Command: cmd,
		Args:    args,
		RawArgs: rest,
	}
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
