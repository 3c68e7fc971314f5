package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var logsTail int

var logsCmd = &cobra.Command{
	Use:   "logs [agent-slug]",
	Short: "Show the per-agent debug log path, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		logRoot := filepath.Join(home, ".mdflow", "logs")

		if len(args) > 0 {
			path := filepath.Join(logRoot, args[0], "debug.log")
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("no log for agent %q", args[0])
			}
			fmt.Println(path)
			return nil
		}

		entries, err := os.ReadDir(logRoot)
		if err != nil {
			return fmt.Errorf("no logs yet (%s)", logRoot)
		}

		type logEntry struct {
			path string
			mod  int64
		}
		var logs []logEntry
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			path := filepath.Join(logRoot, e.Name(), "debug.log")
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			logs = append(logs, logEntry{path: path, mod: info.ModTime().UnixNano()})
		}
		if len(logs) == 0 {
			return fmt.Errorf("no logs yet (%s)", logRoot)
		}
		sort.Slice(logs, func(i, j int) bool { return logs[i].mod > logs[j].mod })

		if logsTail > 0 {
			data, err := os.ReadFile(logs[0].path)
			if err != nil {
				return err
			}
			lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
			if len(lines) > logsTail {
				lines = lines[len(lines)-logsTail:]
			}
			fmt.Println(strings.Join(lines, "\n"))
			return nil
		}

		for _, l := range logs {
			fmt.Println(l.path)
		}
		return nil
	},
}

func init() {
	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 0, "Print the last N lines of the newest log instead of paths")
}
