package main

import (
	"context"
	"understat-pipeline/cmd/understat/commands"
	"understat-pipeline/lib/osutil"
)

func main() {
	ctx, cancel := osutil.SignalContext(context.Background())
	defer cancel()
	commands.ExecuteContext(ctx)
}
