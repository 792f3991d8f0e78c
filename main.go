package main

import "media-dedup/cmd"

func main() {
	cmd.Execute()
}
