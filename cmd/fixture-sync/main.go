package main

import "github.com/ymichaeli/fixture-sync/internal/cli"

func main() {
	cli.Execute()
}
