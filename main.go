package main

import "github.com/theirongolddev/yeargoals/cmd"

func main() {
	cmd.Execute()
}
