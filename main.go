package main

import "github.com/lukman83/skinscout/cmd"

func main() {
	cmd.Execute()
}
