package main

import "github.com/campuspub/publication-portal/cmd"

func main() {
	cmd.Execute()
}
