package main

import "github.com/jywlabs/skync/cmd"

func main() {
	cmd.Execute()
}
