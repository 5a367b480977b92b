package main

import (
	"flag"
	"time"
)

type Flags struct {
	Match    string
	BaudRate int
	Backoff  time.Duration
	Addr     string
	Debug    bool
}

type ReplayFlags struct {
	Path     string
	Interval time.Duration
	Loop     bool
}

func getFlags() (*Flags, *ReplayFlags) {
	flags := &Flags{}
	flag.StringVar(&flags.Match, "match", DEFAULT_PORT_MATCH, "serial port description substring to match")
	flag.IntVar(&flags.BaudRate, "baud", DEFAULT_BAUD_RATE, "baud rate")
	flag.DurationVar(&flags.Backoff, "backoff", DEFAULT_BACKOFF, "wait between device scans")
	flag.StringVar(&flags.Addr, "addr", ":8080", "http listen address")
	flag.BoolVar(&flags.Debug, "debug", false, "verbose logging")

	replay := &ReplayFlags{}
	flag.StringVar(&replay.Path, "replay", "", "Path to a packet capture to replay instead of a real scale")
	flag.DurationVar(&replay.Interval, "replay-interval", time.Second, "Delay between replayed packets")
	flag.BoolVar(&replay.Loop, "replay-loop", false, "Loop replay at EOF")

	flag.Parse()

	return flags, replay
}
