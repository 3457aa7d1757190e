package main

import "github.com/jywlabs/groundwork/cmd"

func main() {
	cmd.Execute()
}
