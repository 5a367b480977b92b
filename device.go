package main

import (
	"bytes"
	"context"
	"strings"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"

	"scalebridge/hub"
	"scalebridge/scale"
)

// readTimeout bounds each serial read so the session loop can notice
// cancellation and dead lines without an explicit I/O error.
const readTimeout = time.Second

// listPorts logs every serial port visible to the OS. Run once at
// startup so a missing scale is easy to diagnose.
func listPorts(log *zap.SugaredLogger) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		log.Warnw("enumerate serial ports", "error", err)
		return
	}
	if len(ports) == 0 {
		log.Info("no serial ports found")
		return
	}
	for _, p := range ports {
		log.Infow("serial port", "port", p.Name, "description", p.Product, "usb", p.IsUSB)
	}
}

// findScalePort returns the first serial port whose human-readable
// description contains match. The same controller reports differently
// per OS: Windows "Silicon Labs CP210x USB to UART Bridge (COM3)",
// Linux "CP2102 USB to UART Bridge Controller".
func findScalePort(match string) (name, description string, ok bool) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", "", false
	}
	for _, p := range ports {
		if strings.Contains(p.Product, match) {
			return p.Name, p.Product, true
		}
	}
	return "", "", false
}

// runDiscovery scans for the scale forever: find a matching port, run
// a session on it until the device is lost, wait out the backoff and
// rescan. USB hot-plug means the port can vanish and reappear under a
// different name at any time, so discovery never finishes. Returns
// only when ctx is cancelled.
func runDiscovery(ctx context.Context, flags *Flags, cache *hub.Cache, registry *hub.Registry, log *zap.SugaredLogger) {
	for {
		if name, desc, ok := findScalePort(flags.Match); ok {
			log.Infow("found scale", "port", name, "description", desc)
			if err := runSession(ctx, name, flags.BaudRate, cache, registry, log); err != nil {
				log.Warnw("scale lost", "port", name, "error", err)
			}
		} else {
			log.Debugw("no scale found", "match", flags.Match)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(flags.Backoff):
		}
	}
}

// runSession opens the port and reads packets until the connection
// errors or ctx is cancelled. Reconnecting is the discovery loop's
// job, not the session's.
func runSession(ctx context.Context, portName string, baud int, cache *hub.Cache, registry *hub.Registry, log *zap.SugaredLogger) error {
	mode := &serial.Mode{BaudRate: baud}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return err
	}
	defer func() {
		if err := port.Close(); err != nil {
			log.Warnw("close serial", "error", err)
		}
	}()
	if err := port.SetReadTimeout(readTimeout); err != nil {
		return err
	}
	log.Infow("listening", "port", portName, "baud", baud)

	return readScale(ctx, port, cache, registry, log)
}

// lineReader is the subset of serial.Port the read loop needs; tests
// substitute scripted readers.
type lineReader interface {
	Read(p []byte) (int, error)
}

// readScale consumes newline-terminated packets from the scale until
// the stream errors or ctx is cancelled. Each non-empty line is
// parsed; good readings update the cache and then broadcast, bad
// lines are logged and skipped. A zero-byte read is a timeout with no
// data, not an error.
func readScale(ctx context.Context, r lineReader, cache *hub.Cache, registry *hub.Registry, log *zap.SugaredLogger) error {
	buf := make([]byte, 256)
	var pending []byte

	for {
		if ctx.Err() != nil {
			return nil
		}

		n, err := r.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			for {
				idx := bytes.IndexByte(pending, '\n')
				if idx < 0 {
					break
				}
				line := strings.TrimRight(string(pending[:idx]), "\r")
				pending = pending[idx+1:]
				if line == "" {
					continue
				}
				handlePacket(line, cache, registry, log)
			}
		}
		if err != nil {
			return err
		}
	}
}

// handlePacket parses one packet and, on success, updates the cache
// before broadcasting so late joiners and the broadcast agree.
func handlePacket(line string, cache *hub.Cache, registry *hub.Registry, log *zap.SugaredLogger) {
	reading, err := scale.Parse(line)
	if err != nil {
		log.Warnw("bad packet", "packet", line, "error", err)
		return
	}
	log.Infow("reading",
		"weight", reading.Weight,
		"units", reading.Units,
		"patient_id", reading.PatientID,
	)
	cache.Set(reading)
	registry.Broadcast(reading)
}
