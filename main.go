package main

import "github.com/benschg/benjamin-grauer-personal-webpage-sub000/cmd"

func main() {
	cmd.Execute()
}
