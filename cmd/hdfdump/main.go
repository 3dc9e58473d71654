package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Send our own log output to stderr, the way a glog-based tool expects.
	flag.Set("logtostderr", "true")
	flag.Parse()

	d := newDumper()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		d.stop()
		os.Exit(1)
	}()

	err := d.run(os.Args)
	d.stop()
	if err != nil {
		os.Exit(1)
	}
}
