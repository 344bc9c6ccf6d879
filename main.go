package main

import "github.com/chrisdamba/whattoeat/cmd"

func main() {
	cmd.Execute()
}
