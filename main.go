package main

import "github.com/pkalnins/buildbar/cmd"

func main() {
	cmd.Execute()
}
