package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Print shell integration instructions",
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		agentDir := filepath.Join(home, ".mdflow")
		if err := os.MkdirAll(agentDir, 0o755); err != nil {
			return err
		}
		fmt.Printf(`mdflow setup

1. Put shared agent files in %s; they are found from anywhere:
     mdflow review.claude.md

2. Project agents live in <project>/.mdflow/.

3. Optional: add agent directories to PATH so tab completion finds them:
     export PATH="$PATH:%s"

4. User-wide defaults go in %s:
     commands:
       claude:
         model: opus
`, agentDir, agentDir, filepath.Join(agentDir, "config.yaml"))
		return nil
	},
}
