// Package main launches the selenv CLI.
package main

import "github.com/selenv/selenv/cmd"

func main() {
	cmd.Execute()
}
