package main

import "github.com/MrSnakeDoc/clipflow/internal/cli"

func main() {
	cli.Execute()
}
