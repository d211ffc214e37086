package main

import "everysearch/cmd"

func main() {
	cmd.Execute()
}
