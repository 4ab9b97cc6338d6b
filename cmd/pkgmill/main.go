package main

import (
	"github.com/lmartin/pkgmill/internal/cli"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if err := cli.NewRootCmd().Execute(); err != nil {
		logrus.Error(err)
		// Exit through logrus so registered exit handlers still run.
		logrus.Exit(1)
	}
}
