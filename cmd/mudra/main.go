// Command mudra turns hand gestures seen by a webcam into mouse and
// keyboard input.
package main

import "github.com/ayusman/mudra/internal/cli"

func main() {
	cli.Execute()
}
