// Package main is the entry point for the mend CLI.
package main

import "github.com/mouse-blink/mend/cmd"

func main() {
	cmd.Execute()
}
