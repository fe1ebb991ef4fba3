package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
)

var (
	successStyle = pterm.NewStyle(pterm.FgLightGreen)
	warnStyle    = pterm.NewStyle(pterm.FgYellow)
	errorStyle   = pterm.NewStyle(pterm.FgRed, pterm.Bold)
	dimStyle     = pterm.NewStyle(pterm.FgGray)
)

func printError(err error) {
	fmt.Fprintln(os.Stderr, errorStyle.Sprint("error: ")+err.Error())
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(os.Stderr, warnStyle.Sprint("warning: ")+fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) {
	fmt.Println(successStyle.Sprint("✓ ") + fmt.Sprintf(format, args...))
}

// renderTable prints rows under a header, or a dimmed note when there are
// none.
func renderTable(header []string, rows [][]string, empty string) error {
	if len(rows) == 0 {
		fmt.Println(dimStyle.Sprint(empty))
		return nil
	}
	data := pterm.TableData{header}
	data = append(data, rows...)
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// renderTree prints a tree built from a leveled list.
func renderTree(items pterm.LeveledList) error {
	root := pterm.NewTreeFromLeveledList(items)
	return pterm.DefaultTree.WithRoot(root).Render()
}
