package main

import "github.com/PeuMauricio/Agente-ADG/internal/commands"

func main() {
	commands.Execute()
}
