package main

import "ignita/cmd"

func main() {
	cmd.Execute()
}
