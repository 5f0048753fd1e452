package main

import "github.com/loopstack-ai/prompt-structured-output-example-workflow/cmd"

func main() {
	cmd.Execute()
}
