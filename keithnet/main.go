// Package main is the entry point of the keithnet controller.
package main

import "github.com/sarchlab/keithnet/keithnet/cmd"

func main() {
	cmd.Execute()
}
