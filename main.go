package main

import "github.com/jsphweid/beatdex/cmd"

func main() {
	cmd.Execute()
}
