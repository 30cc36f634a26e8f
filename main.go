package main

import "github.com/ytget/audio-bot/cmd"

func main() {
	cmd.Execute()
}
