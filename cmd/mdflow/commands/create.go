package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mdflow-ai/mdflow/internal/adapter"
)

const starterTemplate = `---
# Front matter compiles into driver flags; keys starting with _ are
# template variable defaults.
# model: opus
---
Describe the task here. Reference files with @./path, run commands with
!` + "`git status`" + `, and use {{ _name }} template variables.
`

var createCmd = &cobra.Command{
	Use:   "create <name>.<driver>.md",
	Short: "Scaffold a new agent file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !strings.HasSuffix(name, ".md") {
			name += ".md"
		}
		if _, err := os.Stat(name); err == nil {
			return fmt.Errorf("%s already exists", name)
		}
		if err := os.WriteFile(name, []byte(starterTemplate), 0o644); err != nil {
			return err
		}
		fmt.Printf("Created %s\n", name)
		if parts := strings.Split(strings.TrimSuffix(name, ".md"), "."); len(parts) < 2 {
			fmt.Printf("Tip: name agents <task>.<driver>.md so the driver is picked up automatically (known drivers: %s)\n",
				strings.Join(adapter.Names(), ", "))
		}
		return nil
	},
}
