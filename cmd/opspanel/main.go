package main

import "ops-panel/internal/cli"

func main() {
	cli.Execute()
}
