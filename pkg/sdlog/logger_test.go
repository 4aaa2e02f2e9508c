package sdlog

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/robotalks/sdlog/pkg/sdmmc"
	"github.com/robotalks/sdlog/pkg/sdmmc/memory"
)

var errBus = errors.New("bus error")

func countCalls(calls []string, prefix string) int {
	var n int
	for _, call := range calls {
		if strings.HasPrefix(call, prefix) {
			n++
		}
	}
	return n
}

func TestAppendCreatesAndAppends(t *testing.T) {
	card := memory.New()
	require.NoError(t, Append(card, "20240101.LOG", "12:00:00 1 A\n"))
	data, ok := card.ReadFile(0, "20240101.LOG")
	require.True(t, ok)
	require.Equal(t, "12:00:00 1 A\n", string(data))

	require.NoError(t, Append(card, "20240101.LOG", "12:00:05 2 A\n"))
	data, _ = card.ReadFile(0, "20240101.LOG")
	require.Equal(t, "12:00:00 1 A\n12:00:05 2 A\n", string(data))

	require.Equal(t, 0, card.OpenHandles())
	require.False(t, card.Initialized())
	require.Equal(t, []string{
		"init", "mount 0", "rootdir", "open 20240101.LOG", "write 20240101.LOG",
		"closefile 20240101.LOG", "closedir", "release 0", "deinit",
	}, card.Calls()[:9])
}

func TestAppendFailures(t *testing.T) {
	testCases := []struct {
		name    string
		card    func() *memory.Card
		kind    Kind
		cause   error
		calls   []string
		content string
	}{
		{
			name: "init fails",
			card: func() *memory.Card {
				c := memory.New()
				c.Faults.Init = errBus
				return c
			},
			kind:  CannotConnect,
			cause: errBus,
			calls: []string{"init", "deinit"},
		},
		{
			name: "no mountable volume",
			card: func() *memory.Card {
				return memory.NewWithVolumes(false, false, false, false, true)
			},
			kind:  NoSuitableVolume,
			cause: sdmmc.ErrNoSuchVolume,
			calls: []string{"init", "mount 0", "mount 1", "mount 2", "mount 3", "deinit"},
		},
		{
			name: "root dir fails",
			card: func() *memory.Card {
				c := memory.New()
				c.Faults.RootDir = errBus
				return c
			},
			kind:  CannotReadRootDir,
			cause: errBus,
			calls: []string{"init", "mount 0", "rootdir", "release 0", "deinit"},
		},
		{
			name: "open fails",
			card: func() *memory.Card {
				c := memory.New()
				c.Faults.Open = errBus
				return c
			},
			kind:  CannotOpenFile,
			cause: errBus,
			calls: []string{"init", "mount 0", "rootdir", "open A.LOG", "closedir", "release 0", "deinit"},
		},
		{
			name: "invalid name",
			card: func() *memory.Card {
				c := memory.New()
				c.StrictNames = true
				return c
			},
			kind:  CannotOpenFile,
			cause: sdmmc.ErrInvalidName,
		},
		{
			name: "write fails",
			card: func() *memory.Card {
				c := memory.New()
				c.Faults.Write = errBus
				return c
			},
			kind:  CannotWriteToOpenedFile,
			cause: errBus,
			calls: []string{
				"init", "mount 0", "rootdir", "open A.LOG", "write A.LOG",
				"closefile A.LOG", "closedir", "release 0", "deinit",
			},
		},
		{
			name: "short write",
			card: func() *memory.Card {
				c := memory.New()
				c.Faults.ShortWrite = 2
				return c
			},
			kind:    CannotWriteToOpenedFile,
			cause:   io.ErrShortWrite,
			content: "li",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			card := tc.card()
			name := "A.LOG"
			if card.StrictNames {
				name = "not-a-short-name.log"
			}
			err := Append(card, name, "line\n")
			require.Error(t, err)
			kind, ok := KindOf(err)
			require.True(t, ok)
			require.Equal(t, tc.kind, kind)
			require.True(t, errors.Is(err, tc.cause), "cause %v not in %v", tc.cause, err)
			if tc.calls != nil {
				require.Equal(t, tc.calls, card.Calls())
			}
			calls := card.Calls()
			require.Equal(t, 1, countCalls(calls, "deinit"))
			require.Equal(t, "deinit", calls[len(calls)-1])
			require.Equal(t, 0, card.OpenHandles())
			require.False(t, card.Initialized())
			data, _ := card.ReadFile(0, name)
			require.Equal(t, tc.content, string(data))
		})
	}
}

func TestAppendSwallowsCloseErrors(t *testing.T) {
	card := memory.New()
	card.Faults.CloseFile = errBus
	card.Faults.CloseDir = errBus
	card.Faults.Release = errBus
	require.NoError(t, Append(card, "A.LOG", "ok\n"))
	data, _ := card.ReadFile(0, "A.LOG")
	require.Equal(t, "ok\n", string(data))

	card.Faults.Write = errors.New("write error")
	err := Append(card, "A.LOG", "lost\n")
	require.True(t, errors.Is(err, ErrCannotWriteToOpenedFile))
	require.True(t, errors.Is(err, card.Faults.Write))
	require.False(t, errors.Is(err, errBus))
}

func TestAppendProbesVolumes(t *testing.T) {
	card := memory.NewWithVolumes(false, false, true)
	require.NoError(t, Append(card, "A.LOG", "x\n"))
	data, ok := card.ReadFile(2, "A.LOG")
	require.True(t, ok)
	require.Equal(t, "x\n", string(data))
	require.Equal(t, 3, countCalls(card.Calls(), "mount"))

	limited := &Logger{MaxVolumes: 2}
	err := limited.Append(card, "A.LOG", "y\n")
	require.True(t, errors.Is(err, ErrNoSuitableVolume))
	data, _ = card.ReadFile(2, "A.LOG")
	require.Equal(t, "x\n", string(data))
}

func TestAppendFirstVolumeWins(t *testing.T) {
	card := memory.NewWithVolumes(true, true)
	require.NoError(t, Append(card, "A.LOG", "x\n"))
	_, ok := card.ReadFile(1, "A.LOG")
	require.False(t, ok)
	_, ok = card.ReadFile(0, "A.LOG")
	require.True(t, ok)
}

func TestAppendIsOrderPreserving(t *testing.T) {
	names := []string{"A.LOG", "B.LOG", "20240101.LOG"}
	rapid.Check(t, func(t *rapid.T) {
		card := memory.New()
		expected := map[string]string{}
		appends := rapid.SliceOfN(rapid.Custom(func(t *rapid.T) [2]string {
			return [2]string{
				rapid.SampledFrom(names).Draw(t, "name"),
				rapid.StringMatching(`[a-z0-9: ]{0,16}\n`).Draw(t, "data"),
			}
		}), 1, 20).Draw(t, "appends")

		for _, a := range appends {
			if err := Append(card, a[0], a[1]); err != nil {
				t.Fatalf("append %q: %v", a[0], err)
			}
			expected[a[0]] += a[1]
		}
		for name, content := range expected {
			data, ok := card.ReadFile(0, name)
			if !ok {
				t.Fatalf("%s missing", name)
			}
			if string(data) != content {
				t.Fatalf("%s: expected %q, got %q", name, content, string(data))
			}
		}
		if n := card.OpenHandles(); n != 0 {
			t.Fatalf("%d handles leaked", n)
		}
	})
}
