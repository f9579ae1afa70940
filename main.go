package main

import (
	"backsync/cmd"
)

func main() {
	cmd.Execute()
}
