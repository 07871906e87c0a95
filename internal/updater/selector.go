package updater

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zrcheng1991/redfish-firmware-update-tool/internal/api"
)

// SelectTargets lists the firmware inventory members and prompts for a
// 1-based, space-separated selection. Any invalid token discards the whole
// line and re-prompts; a partially valid line never leaks into the result.
// "0", an empty line or EOF opts out, meaning simple upload. The returned
// targets preserve input order.
func SelectTargets(in io.Reader, out io.Writer, members []api.InventoryMember) []string {
	fmt.Fprintln(out, "Available firmware inventories are listed below:")
	for i, m := range members {
		line := fmt.Sprintf("%d\t%s", i+1, m.Path)
		if m.Version != "" {
			line += fmt.Sprintf("  (%s %s)", m.Name, m.Version)
		}
		fmt.Fprintln(out, line)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintln(out, "\nPlease enter numbers to select multiple targets, separated by spaces,")
		fmt.Fprintln(out, "or 0 to indicate that Multipart HTTP PUSH is not used.")
		fmt.Fprint(out, ">> ")

		if !scanner.Scan() {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "0" {
			return nil
		}

		selected := parseSelection(out, line, members)
		if selected == nil {
			continue
		}

		fmt.Fprintln(out, "\nSelected targets are listed below:")
		for _, t := range selected {
			fmt.Fprintln(out, t)
		}
		fmt.Fprintln(out)
		return selected
	}
}

func parseSelection(out io.Writer, line string, members []api.InventoryMember) []string {
	tokens := strings.Fields(line)
	selected := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		idx, err := strconv.Atoi(tok)
		if err != nil || idx < 1 || idx > len(members) {
			fmt.Fprintf(out, "Index %s is not valid.\n", tok)
			return nil
		}
		selected = append(selected, members[idx-1].Path)
	}
	return selected
}
