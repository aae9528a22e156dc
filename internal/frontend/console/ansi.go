// Package console renders duels to an ANSI terminal and reads single
// keypresses from it.
package console

import (
	"fmt"
	"strings"
)

// ANSI escape code constants for terminal styling.
const (
	Reset     = "\033[0m"
	Bold      = "\033[1m"
	Dim       = "\033[2m"
	Italic    = "\033[3m"
	Underline = "\033[4m"

	Black   = "\033[30m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	BrightBlack   = "\033[90m"
	BrightRed     = "\033[91m"
	BrightGreen   = "\033[92m"
	BrightYellow  = "\033[93m"
	BrightBlue    = "\033[94m"
	BrightMagenta = "\033[95m"
	BrightCyan    = "\033[96m"
	BrightWhite   = "\033[97m"

	// 256-color extras.
	Gold    = "\033[38;5;220m"
	HotPink = "\033[38;5;205m"
	Orange  = "\033[38;5;208m"
	Gray    = "\033[38;5;245m"

	ClearScreen = "\033[2J\033[H"
)

// markupCodes maps {name} tags accepted in formatted datapack text.
var markupCodes = map[string]string{
	"reset":          Reset,
	"bold":           Bold,
	"dim":            Dim,
	"italic":         Italic,
	"underline":      Underline,
	"black":          Black,
	"red":            Red,
	"green":          Green,
	"yellow":         Yellow,
	"blue":           Blue,
	"magenta":        Magenta,
	"cyan":           Cyan,
	"white":          White,
	"bright_red":     BrightRed,
	"bright_green":   BrightGreen,
	"bright_yellow":  BrightYellow,
	"bright_blue":    BrightBlue,
	"bright_magenta": BrightMagenta,
	"bright_cyan":    BrightCyan,
	"bright_white":   BrightWhite,
	"gold":           Gold,
	"hot_pink":       HotPink,
	"orange":         Orange,
	"gray":           Gray,
	"dark_gray":      BrightBlack,
}

// Colorize wraps text with the given ANSI color code and a reset suffix.
func Colorize(color, text string) string {
	return color + text + Reset
}

// Colorf wraps a formatted string with the given ANSI color code.
func Colorf(color, format string, args ...any) string {
	return color + fmt.Sprintf(format, args...) + Reset
}

// Markup replaces every known {name} tag in s with its escape code. Unknown
// tags and unbalanced braces are left as written. A trailing Reset is added
// when any tag was expanded.
func Markup(s string) string {
	var b strings.Builder
	expanded := false
	for {
		open := strings.IndexByte(s, '{')
		if open < 0 {
			b.WriteString(s)
			break
		}
		end := strings.IndexByte(s[open:], '}')
		if end < 0 {
			b.WriteString(s)
			break
		}
		end += open
		b.WriteString(s[:open])
		if code, ok := markupCodes[s[open+1:end]]; ok {
			b.WriteString(code)
			expanded = true
		} else {
			b.WriteString(s[open : end+1])
		}
		s = s[end+1:]
	}
	if expanded {
		b.WriteString(Reset)
	}
	return b.String()
}

// StripANSI removes all \033[...m sequences from s.
func StripANSI(s string) string {
	result := make([]byte, 0, len(s))
	i := 0
	for i < len(s) {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			if j < len(s) {
				i = j + 1
				continue
			}
		}
		result = append(result, s[i])
		i++
	}
	return string(result)
}

// Bar draws a fixed-width gauge such as [#####-----].
func Bar(cur, limit, width int) string {
	if width < 1 {
		return "[]"
	}
	filled := 0
	if limit > 0 && cur > 0 {
		filled = min(width, cur*width/limit)
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
