// Package style provides terminal styling for the promptflow CLI: colored
// labels for run output and Typer-like help templates.
package style

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// ANSI color codes
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[0;31m"
	Green   = "\033[0;32m"
	Yellow  = "\033[1;33m"
	Magenta = "\033[0;35m"
	Cyan    = "\033[0;36m"
	Gray    = "\033[90m"
)

// NoColor disables colors (non-TTY, NO_COLOR, PROMPTFLOW_NO_COLOR or --json).
var NoColor = false

func init() {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("PROMPTFLOW_NO_COLOR") != "" {
		NoColor = true
	}
	if fileInfo, err := os.Stdout.Stat(); err == nil {
		if (fileInfo.Mode() & os.ModeCharDevice) == 0 {
			NoColor = true
		}
	}
}

// C wraps text with color, respecting NoColor.
func C(color, text string) string {
	if NoColor {
		return text
	}
	return color + text + Reset
}

// B makes text bold.
func B(text string) string {
	return C(Bold, text)
}

// Success formats a "label: " prefix for completed steps.
func Success(label string) string {
	return C(Green, label+":") + " "
}

// Failure formats a "label: " prefix for failed steps.
func Failure(label string) string {
	return C(Red, label+":") + " "
}

// Check renders a doctor line marker.
func Check(ok bool) string {
	if ok {
		return C(Green, "✓")
	}
	return C(Red, "✗")
}

// Places renders a history as "start → ready → end", highlighting the last
// place in red when the run failed there.
func Places(places []string, failed bool) string {
	parts := make([]string, len(places))
	for i, p := range places {
		switch {
		case i == len(places)-1 && failed:
			parts[i] = C(Red, p)
		case i == len(places)-1:
			parts[i] = C(Green, p)
		default:
			parts[i] = C(Cyan, p)
		}
	}
	return strings.Join(parts, C(Gray, " → "))
}

// SetupHelp configures the styled help and usage templates for cmd.
func SetupHelp(cmd *cobra.Command) {
	cobra.AddTemplateFunc("styleHeading", styleHeading)
	cobra.AddTemplateFunc("styleCommand", styleCommand)
	cobra.AddTemplateFunc("rpadStyled", rpadStyled)

	cmd.SetUsageTemplate(usageTemplate)
	cmd.SetHelpTemplate(helpTemplate)
}

func styleHeading(s string) string {
	return C(Bold+Magenta, s)
}

func styleCommand(s string) string {
	return C(Cyan, s)
}

func rpadStyled(s string, padding int) string {
	styled := styleCommand(s)
	// Pad on the raw length; escape codes take no columns.
	if padLen := padding - len(s); padLen > 0 {
		return styled + strings.Repeat(" ", padLen)
	}
	return styled
}

const usageTemplate = `{{ styleHeading "Usage:" }}
  {{ styleCommand .UseLine }}{{if .HasAvailableSubCommands}} [command]{{end}}
{{if .HasAvailableSubCommands}}
{{ styleHeading "Commands:" }}{{range .Commands}}{{if .IsAvailableCommand}}
  {{rpadStyled .Name .NamePadding }}  {{.Short}}{{end}}{{end}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`

const helpTemplate = `{{if .Long}}{{.Long}}

{{else if .Short}}{{.Short}}

{{end}}{{ styleHeading "Usage:" }}
  {{ styleCommand .UseLine }}{{if .HasAvailableSubCommands}} [command]{{end}}
{{if gt (len .Aliases) 0}}
{{ styleHeading "Aliases:" }}
  {{.NameAndAliases}}
{{end}}{{if .HasExample}}
{{ styleHeading "Examples:" }}
{{.Example}}
{{end}}{{if .HasAvailableSubCommands}}
{{ styleHeading "Commands:" }}{{range .Commands}}{{if .IsAvailableCommand}}
  {{rpadStyled .Name .NamePadding }}  {{.Short}}{{end}}{{end}}
{{end}}{{if .HasAvailableLocalFlags}}
{{ styleHeading "Options:" }}
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}{{if .HasAvailableInheritedFlags}}
{{ styleHeading "Global Options:" }}
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}{{if .HasAvailableSubCommands}}
Use "{{.CommandPath}} [command] --help" for more information about a command.
{{end}}`
