package main

import "essaysim/internal/cli"

func main() {
	cli.Execute()
}
