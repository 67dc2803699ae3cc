// main is the entry point of the cleanscore CLI.
package main

import (
	"github.com/huangsam/cleanscore/cmd"
	"github.com/huangsam/cleanscore/internal/contract"
	"github.com/huangsam/cleanscore/internal/iocache"
)

func main() {
	err := cmd.Execute()
	iocache.CloseStores()
	if err != nil {
		contract.LogFatal("cleanscore", err)
	}
}
