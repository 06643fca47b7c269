package ui

import (
	"os/exec"
	"strings"
)

const logoText = "readout"

// createLogo generates the readout logo using figlet or a plain fallback.
func createLogo() string {
	cmd := exec.Command("figlet", "-f", "slant", logoText)
	output, err := cmd.Output()
	if err == nil && len(output) > 0 {
		return trimBlankLines(string(output))
	}
	return strings.ToUpper(logoText)
}

// trimBlankLines drops blank lines and trailing space from figlet output.
func trimBlankLines(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
