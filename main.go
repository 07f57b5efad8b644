package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"gomori.dev/x/judge/internal/judge/cmd"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		PadLevelText:     true,
	})
	logrus.SetLevel(logrus.InfoLevel)

	if err := judge(); err != nil {
		logrus.Fatal(err)
	}
}

func judge() error {
	root := cmd.Root()
	root.SetArgs(os.Args[1:])
	return root.ExecuteContext(context.Background())
}
