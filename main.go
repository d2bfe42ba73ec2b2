// Package main is the entry point for sharpmote.
package main

import (
	"github.com/Ducheved/sharpmote/cmd"
	"github.com/Ducheved/sharpmote/config"
	"github.com/Ducheved/sharpmote/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
