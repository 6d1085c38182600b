package main

import "github.com/manseek/manseek/cmd"

func main() {
	cmd.Execute()
}
