// Package telnet provides a line-oriented Telnet server with ANSI color
// support for the dice table.
package telnet

import "fmt"

// ANSI escape codes.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	BrightRed    = "\033[91m"
	BrightGreen  = "\033[92m"
	BrightYellow = "\033[93m"
)

// Colorize wraps text in color followed by Reset.
func Colorize(color, text string) string {
	return color + text + Reset
}

// Colorf formats its arguments and wraps the result in color.
func Colorf(color, format string, args ...any) string {
	return Colorize(color, fmt.Sprintf(format, args...))
}

// StripANSI removes every ESC [ ... m sequence from s. An unterminated
// sequence at the end of s is kept as-is.
func StripANSI(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			if j < len(s) {
				i = j
				continue
			}
		}
		out = append(out, s[i])
	}
	return string(out)
}
