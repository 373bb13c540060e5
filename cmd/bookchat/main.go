// Command bookchat is a terminal chat client for a literary assistant
// backend, and the backend itself (bookchat serve).
package main

import "github.com/diogo/bookchat/internal/commands"

func main() {
	commands.Execute()
}
