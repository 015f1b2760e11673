package main

import "github.com/bjtill/Vinyl-Record-Collection-Database/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
