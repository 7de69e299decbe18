package main

import (
	"wootsync/cmd/wootsync/commands"
	"wootsync/lib/osutil"
	"wootsync/lib/telemetry"
)

func main() {
	telemetry.InitSlog(false)
	commands.ExecuteContext(osutil.SignalContext())
}
