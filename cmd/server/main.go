package main

import "github.com/mustafanalbant1/Event-Finder/cmd/server/cmd"

func main() {
	cmd.Execute()
}
