package main

import "github.com/dutytrack/dutytrack/cmd"

func main() {
	cmd.Execute()
}
