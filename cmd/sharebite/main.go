package main

import "github.com/example/sharebite/cmd"

func main() {
	cmd.Execute()
}
