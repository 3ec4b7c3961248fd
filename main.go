package main

import "github.com/taskhub-io/ms-go-taskhub/cmd"

func main() {
	cmd.Execute()
}
