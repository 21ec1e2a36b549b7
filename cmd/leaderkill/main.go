package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	config "leaderkill/configs"
	"leaderkill/pkg/logger"

	_ "leaderkill/pkg/storage/etcd"
	_ "leaderkill/pkg/storage/file"
	_ "leaderkill/pkg/storage/postgres"
	_ "leaderkill/pkg/storage/redis"
	_ "leaderkill/pkg/storage/s3"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := config.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(cfg)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	_ = logger.Sync()

	if err == nil {
		return exitOK
	}
	code := exitCode(err)
	if code == exitUsage {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return code
}
