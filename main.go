package main

import "github.com/obs-infancia/sinanetl/cmd"

func main() {
	cmd.Execute()
}
