package main

import "github.com/agentic-research/recast/cmd"

func main() {
	cmd.Execute()
}
