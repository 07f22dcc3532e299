package main

import (
	"os"

	"github.com/focusflow/focusflow/timerservice"
)

func main() {
	if err := timerservice.Run(); err != nil {
		os.Exit(1)
	}
}
