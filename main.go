package main

import "github.com/brk3/habitpanda/cmd"

func main() {
	cmd.Execute()
}
