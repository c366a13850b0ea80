// main is the entrypoint for the gitattrib CLI.
package main

import (
	"github.com/gitattrib/gitattrib/cmd"
	"github.com/gitattrib/gitattrib/internal/contract"
	"github.com/gitattrib/gitattrib/internal/iocache"
)

func main() {
	err := cmd.Execute()
	iocache.CloseCaching()
	if err != nil {
		contract.LogFatal("command failed", err)
	}
}
