package main

import (
	"flag"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"github.com/fastlaphq/fastlap"
)

var configPath string

func init() {
	flag.StringVar(&configPath, "c", "./config.yml", "config path")
	flag.Parse()
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	logrus.Infof("Starting F1 Fast Lap Challenge backend")

	config, err := fastlap.ReadConfig(configPath)

	if err != nil {
		logrus.WithError(err).Fatalf("Could not read config at %s", configPath)
	}

	server, err := fastlap.NewServer(config)

	if err != nil {
		logrus.WithError(err).Fatal("Could not initialise server")
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	go func() {
		for range c {
			if err := server.Stop(); err != nil {
				logrus.WithError(err).Fatal("Could not stop server")
			}

			os.Exit(0)
		}
	}()

	if err := server.Run(); err != nil {
		logrus.WithError(err).Fatal("Could not run server")
	}

	logrus.Infof("Server stopped. Exiting")
}
