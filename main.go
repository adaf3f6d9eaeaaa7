package main

import "yumcut-cheap-image-generation/cmd"

func main() {
	cmd.Execute()
}
