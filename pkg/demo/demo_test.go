package demo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/sdlog/pkg/clock"
	"github.com/robotalks/sdlog/pkg/display"
	fx "github.com/robotalks/sdlog/pkg/framework"
	"github.com/robotalks/sdlog/pkg/sdmmc/memory"
)

var errBus = errors.New("bus error")

func fixedRTC() clock.RTC {
	return clock.RTCFunc(func() (clock.DateTime, error) {
		return clock.DateTime{Year: 24, Month: 1, Day: 1, Weekday: 1, Hours: 12, Minutes: 0, Seconds: 5}, nil
	})
}

func runLoop(t *testing.T, iterations uint64, adders ...fx.LoopAdder) {
	loop := &fx.Loop{Interval: time.Millisecond, MaxIterations: iterations}
	loop.Add(adders...)
	require.NoError(t, loop.Run(context.Background()))
}

func TestWriter(t *testing.T) {
	var clk clock.ClockData
	card := memory.New()
	card.Clock = &clk
	var screen display.Buffer
	w := NewWriter(card, fixedRTC(), &clk, &screen)
	runLoop(t, 2, w)

	require.Equal(t, 2, w.Counter())
	require.Equal(t, []string{
		"1.1.2024 12:00:05\nLine written\n20240101.log\n2024-1-1 12:00:05 0\n",
		"1.1.2024 12:00:05\nLine written\n20240101.log\n2024-1-1 12:00:05 1\n",
	}, screen.Frames())
	data, ok := card.ReadFile(0, "20240101.LOG")
	require.True(t, ok)
	require.Equal(t, "2024-1-1 12:00:05 0\n2024-1-1 12:00:05 1\n", string(data))
	ts, _ := card.ModTime(0, "20240101.LOG")
	require.Equal(t, uint8(54), ts.YearSince1970)
	require.Equal(t, 0, card.OpenHandles())
}

func TestWriterFailures(t *testing.T) {
	card := memory.New()
	card.Faults.Init = errBus
	var screen display.Buffer
	w := NewWriter(card, clock.RTCFunc(func() (clock.DateTime, error) {
		return clock.DateTime{}, errors.New("i2c nack")
	}), nil, &screen)
	runLoop(t, 2, w)

	require.Equal(t, 2, w.Counter())
	require.Equal(t, "1.1.1970 0:00:00\nAppend ERR\nCannotConnect\nbus error\n", screen.Last())
	require.False(t, card.Initialized())
}

func TestErrorText(t *testing.T) {
	require.Equal(t, "Append ERR\nother\n", ErrorText(errors.New("other")))
}

func TestProbe(t *testing.T) {
	testCases := []struct {
		name string
		card func() *memory.Card
		text string
	}{
		{
			name: "ok",
			card: memory.New,
			text: "SD OK: 64 MB\nGet FAT Volume 0: OK",
		},
		{
			name: "no size",
			card: func() *memory.Card {
				c := memory.New()
				c.Faults.CardSize = errBus
				return c
			},
			text: "SD Card Connected\nCannot read size\nGet FAT Volume 0: OK",
		},
		{
			name: "no FAT",
			card: func() *memory.Card {
				return memory.NewWithVolumes(false, true)
			},
			text: "SD OK: 64 MB\nVol 0 cannot read FAT",
		},
		{
			name: "no card",
			card: func() *memory.Card {
				c := memory.New()
				c.Faults.Init = errBus
				return c
			},
			text: "SD Card Error\nCannot connect",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			card := tc.card()
			var screen display.Buffer
			runLoop(t, 3, NewProbe(card, &screen))
			require.Equal(t, []string{tc.text}, screen.Frames())
			require.False(t, card.Initialized())
			require.Equal(t, 0, card.OpenHandles())
		})
	}
}

func TestClockView(t *testing.T) {
	var screen display.Buffer
	var levels []bool
	v := NewClockView(fixedRTC(), &screen, fx.IndicatorFunc(func(high bool) { levels = append(levels, high) }))
	runLoop(t, 1, v)
	require.Equal(t, "24/01/01\n12:00:05\nday 1", screen.Last())
	require.Equal(t, []bool{true, false}, levels)

	v.RTC = clock.RTCFunc(func() (clock.DateTime, error) { return clock.DateTime{}, errors.New("i2c nack") })
	runLoop(t, 1, v)
	require.Equal(t, "i2c nack", screen.Last())
}
