package main

import "github.com/ppartarr/mp3renamer/cmd"

func main() {
	cmd.Execute()
}
