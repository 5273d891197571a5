// Command rptctl is the bench console for a repeater board. It reads the
// board's dictionary over the link, then sends one command per input line
// and prints every message the board reports.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"sii953x/host/console"
	"sii953x/host/serial"
	"sii953x/protocol"
)

var (
	device  = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud    = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	timeout = flag.Duration("timeout", 2*time.Second, "Command acknowledge timeout")
	quiet   = flag.Bool("quiet", false, "Do not print board log messages")
)

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud
	port, err := serial.Open(cfg)
	if err != nil {
		return err
	}
	link := protocol.NewHostTransport(port)
	defer link.Close()

	dctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	dict, err := link.FetchDictionary(dctx)
	cancel()
	if err != nil {
		return fmt.Errorf("dictionary: %w", err)
	}
	codec := console.NewCodec(dict)
	fmt.Printf("Connected to %s (%s), %d commands\n", *device, dict.Version, len(dict.Commands))

	logID, _, _ := dict.Lookup("log")
	link.SetResponseHandler(func(msg *protocol.Message) {
		if *quiet && msg.ID == logID {
			return
		}
		fmt.Println(codec.Format(msg))
	})

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case text, ok := <-lines:
			if !ok {
				return nil
			}
			if err := handle(ctx, link, codec, text); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	}
}

var errQuit = errors.New("quit")

func handle(ctx context.Context, link *protocol.HostTransport, codec *console.Codec, text string) error {
	line, err := console.Parse(text)
	if errors.Is(err, console.ErrEmptyLine) {
		return nil
	}
	if err != nil {
		return err
	}

	switch line.Name {
	case "quit", "exit":
		return errQuit
	case "help":
		for _, h := range codec.Help() {
			fmt.Println("  " + h)
		}
		return nil
	}

	id, data, err := codec.Encode(line)
	if err != nil {
		return err
	}
	cctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	return link.SendCommand(cctx, id, func(out protocol.OutputBuffer) {
		out.Output(data)
	})
}
