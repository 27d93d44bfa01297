package main

import "github.com/encodeous/rayon/cmd"

func main() {
	cmd.Execute()
}
