package agent

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/mdflow-ai/mdflow/pkg/types"
)

// PickAgentFile lists the markdown agents under cwd and cwd/.mdflow and
// prompts for a choice by number. Only called when stdin is a terminal.
func PickAgentFile(cwd string) (string, error) {
	var candidates []string
	for _, dir := range []string{cwd, filepath.Join(cwd, ".mdflow")} {
		matches, err := filepath.Glob(filepath.Join(dir, "*.md"))
		if err != nil {
			continue
		}
		candidates = append(candidates, matches...)
	}
	sort.Strings(candidates)

	if len(candidates) == 0 {
		return "", types.NewError(types.KindConfigurationError,
			"no agent file given and none found in %s", cwd)
	}

	fmt.Fprintln(os.Stderr, "Select an agent file:")
	for i, c := range candidates {
		rel, err := filepath.Rel(cwd, c)
		if err != nil {
			rel = c
		}
		fmt.Fprintf(os.Stderr, "  %2d) %s\n", i+1, rel)
	}
	fmt.Fprint(os.Stderr, "> ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", types.NewError(types.KindUserCancelled, "file selection aborted")
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 1 || n > len(candidates) {
		return "", types.NewError(types.KindConfigurationError, "invalid selection %q", strings.TrimSpace(line))
	}
	return candidates[n-1], nil
}

// TrustPrompt asks whether to trust a remote domain.
func TrustPrompt(domain string) (bool, error) {
	fmt.Fprintf(os.Stderr, "Trust agent files from %s? [y/N] ", color.YellowString(domain))
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return false, types.NewError(types.KindUserCancelled, "trust prompt aborted")
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
