package main

import "github.com/Rorical/Vibella/cmd"

func main() {
	cmd.Execute()
}
