package main

import "github.com/josephlewis42/jsh/cmd"

func main() {
	cmd.Execute()
}
