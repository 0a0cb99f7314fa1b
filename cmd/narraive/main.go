package main

import "narraive/internal/cli"

// main hands off to the cobra command tree; with no subcommand it opens the TUI.
func main() {
	cli.Execute()
}
