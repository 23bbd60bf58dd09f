package main

import "github.com/bcdannyboy/optval/cmd"

func main() {
	cmd.Execute()
}
