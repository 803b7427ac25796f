package main

import "github.com/cloudcourier/stack-publisher/cmd/stack-publisher/cmd"

func main() {
	cmd.Execute()
}
