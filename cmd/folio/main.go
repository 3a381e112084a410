package main

import "github.com/fpt/folio/internal/cli"

func main() {
	cli.Execute()
}
