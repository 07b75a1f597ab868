package main

import (
	"log"

	"github.com/jimmyjacobson/Slack-Channel-Analyzer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
