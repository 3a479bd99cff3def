package main

import (
	"os"
	"strings"
	"text/template"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// formatBold returns the string formatted as bold using pterm
func formatBold(s string) string {
	if !isTerminal(os.Stdout) {
		return s
	}
	return pterm.Bold.Sprint(s)
}

// formatBoldUpper returns the string in uppercase and bold
func formatBoldUpper(s string) string {
	return formatBold(strings.ToUpper(s))
}

const usageTemplate = `{{boldUpper "usage"}}
  {{.UseLine}}

{{boldUpper "flags"}}
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{boldUpper "exit codes"}}
  0   success        1  usage error      2  App Store credential required
  3   running as root                    4  sudo rejected
  5   bad configuration                  6  environment unusable (no home directory)
  10-21  phase failed (in pipeline order)
  99  unexpected failure
`

// initTemplateFormatting adds custom formatting functions to Cobra templates
func initTemplateFormatting(cmd *cobra.Command) {
	cobra.AddTemplateFuncs(template.FuncMap{
		"bold":      formatBold,
		"boldUpper": formatBoldUpper,
	})
	cmd.SetUsageTemplate(usageTemplate)
}
