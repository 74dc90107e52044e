// Package main is the entry of the eventreport command-line tool.
package main

import "github.com/sarchlab/eventreport/eventreport/cmd"

func main() {
	cmd.Execute()
}
