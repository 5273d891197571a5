//go:build rp2040 || rp2350

package main

import (
	_ "embed"
	"log/slog"
	"machine"
	"time"

	"tinygo.org/x/drivers"

	"sii953x/board"
	"sii953x/chip"
	"sii953x/core"
	"sii953x/cra"
)

//go:embed board.json
var boardConfig []byte

func main() {
	// Clear any watchdog state left by the previous run
	if err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0}); err != nil {
		return
	}

	InitClock()
	InitLink()
	bus, err := InitI2C(machine.I2C0, 400_000)
	if err != nil {
		fatal("i2c", err)
	}

	cfg, err := board.LoadConfig(boardConfig)
	if err != nil {
		fatal("config", err)
	}

	pins := NewBoardPins()
	hw := chip.New(cra.New([]drivers.I2C{bus}, cra.DefaultPageMap(0)))
	app, err := board.New(cfg, board.Peripherals{
		I2C:      []drivers.I2C{bus},
		Tx:       hw,
		Repeater: hw,
		Board:    pins,
		CEC:      hw,
		Keys:     pins,
		Link:     linkUART,
		Clock:    core.SystemClock{},
	})
	if err != nil {
		fatal("board", err)
	}
	core.SetLogger(slog.New(core.NewDebugHandler(app.DebugWriter(), core.LevelStat)))

	go linkReaderLoop(app.LinkInput())

	// A CBUS channel without a peer still leaves the rest of the board usable
	if err := app.Init(); err != nil {
		linkUART.Write([]byte("init: " + err.Error() + "\r\n"))
	}

	for {
		UpdateSystemTime()
		if f, ok, err := hw.ReceiveCEC(); err != nil {
			core.Timeout("cec")
		} else if ok {
			app.ReceiveCEC(f)
		}
		app.Poll()

		if app.NextWake() > 0 {
			time.Sleep(100 * time.Microsecond)
		}
	}
}

// fatal reports a start-up failure on the link UART and blinks the status
// LED until reset
func fatal(stage string, err error) {
	linkUART.Write([]byte(stage + ": " + err.Error() + "\r\n"))
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.Set(!led.Get())
		time.Sleep(250 * time.Millisecond)
	}
}
