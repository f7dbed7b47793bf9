package main

import "github.com/batchauction/engine/cmd"

func main() {
	cmd.Execute()
}
