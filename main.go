package main

import "github.com/label-minter/server/internal/cmd"

func main() {
	cmd.Execute()
}
