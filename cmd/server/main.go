package main

import "github.com/nitty-hq/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
